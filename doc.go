// Package attackforge provides a native Go client for the AttackForge
// Self-Service REST API, focused on resolving scanner findings to existing
// AttackForge records before import.
//
// # Features
//
//   - Service-based architecture (Assets, Writeups, Vulnerabilities, Projects)
//   - Filter builders that render the remote query language
//   - Typed errors for precise error handling
//   - Functional options for flexible configuration
//   - Optional slog logging, Prometheus metrics and OpenTelemetry tracing
//
// # Quick Start
//
//	client, err := attackforge.NewClient(
//	    attackforge.WithBaseURL("https://tenant.attackforge.com/api/ss"),
//	    attackforge.WithAPIKey(apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vulnID, err := client.Vulnerabilities.Resolve(ctx, "19506", projectID)
//	switch {
//	case errors.Is(err, attackforge.ErrUnresolved):
//	    // create it
//	case err != nil:
//	    log.Fatal(err)
//	default:
//	    fmt.Println("already imported as", vulnID)
//	}
//
// # Resolution
//
// Every lookup asks the API how many records match. Exactly one match is a
// success; zero or several both yield a *ResolutionError that matches
// ErrUnresolved, so callers branch on a single condition. The Count field
// tells the two cases apart when needed.
//
// # Queries
//
// BuildURL appends the q and skip parameters to an endpoint:
//
//	attackforge.BuildURL("library/assets",
//	    attackforge.WithFilter(attackforge.Eq("external_id", "host-1")),
//	    attackforge.WithSkip(0))
//	// library/assets?q={ external_id: { $eq: "host-1" } }&skip=0
//
// # Error Handling
//
// HTTP failures are returned as typed errors that can be inspected with errors.As:
//
//	_, err := client.Projects.Stats(ctx, "invalid-id")
//	var notFound *attackforge.NotFoundError
//	if errors.As(err, &notFound) {
//	    // Handle not found
//	}
//
// Responses that decode but lack expected fields yield a *MalformedResponseError.
package attackforge
