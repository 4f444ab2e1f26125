package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-attackforge"
)

func newAssetCmd(a *app) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:     "asset",
		Aliases: []string{"assets"},
		Short:   "Resolve and list assets",
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <external-id>",
		Short: "Resolve a library asset by external ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				id, err := client.Assets.Resolve(ctx, args[0], reqOpts...)
				if err != nil {
					return nil, err
				}
				return map[string]string{"id": id}, nil
			})
		},
	}

	firstIDCmd := &cobra.Command{
		Use:   "first-id <endpoint>",
		Short: "Print the ID of the first asset listed by an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				id, err := client.Assets.FirstID(ctx, args[0], query, reqOpts...)
				if err != nil {
					return nil, err
				}
				return map[string]string{"id": id}, nil
			})
		},
	}
	firstIDCmd.Flags().String("query", "", "Filter expression sent as the q parameter")

	indexCmd := &cobra.Command{
		Use:   "index <endpoint>",
		Short: "List assets keyed by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				return client.Assets.Index(ctx, args[0], query, reqOpts...)
			})
		},
	}
	indexCmd.Flags().String("query", "", "Filter expression sent as the q parameter")

	assetCmd.AddCommand(resolveCmd, firstIDCmd, indexCmd)
	return assetCmd
}

func newWriteupCmd(a *app) *cobra.Command {
	writeupCmd := &cobra.Command{
		Use:     "writeup",
		Aliases: []string{"writeups"},
		Short:   "Resolve library writeups",
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <plugin-id>",
		Short: "Resolve a writeup by scanner plugin ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library, _ := cmd.Flags().GetString("library")
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				return client.Writeups.Resolve(ctx, args[0], library, reqOpts...)
			})
		},
	}
	resolveCmd.Flags().String("library", "", "Writeup library ID")
	_ = resolveCmd.MarkFlagRequired("library")

	writeupCmd.AddCommand(resolveCmd)
	return writeupCmd
}

func newVulnCmd(a *app) *cobra.Command {
	vulnCmd := &cobra.Command{
		Use:     "vuln",
		Aliases: []string{"vulnerability", "vulns"},
		Short:   "Resolve project vulnerabilities and upload evidence",
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <plugin-id>",
		Short: "Resolve a project vulnerability by scanner plugin ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				id, err := client.Vulnerabilities.Resolve(ctx, args[0], project, reqOpts...)
				if err != nil {
					return nil, err
				}
				return map[string]string{"vulnerability_id": id}, nil
			})
		},
	}
	resolveCmd.Flags().String("project", "", "Project ID")
	_ = resolveCmd.MarkFlagRequired("project")

	uploadCmd := &cobra.Command{
		Use:   "upload-evidence <vuln-id> <file>",
		Short: "Attach a file to a vulnerability",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType, _ := cmd.Flags().GetString("content-type")
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(args[1]))
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open evidence: %w", err)
			}
			defer func() { _ = f.Close() }()

			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				return client.Vulnerabilities.UploadEvidence(ctx, args[0], &attackforge.Evidence{
					FileName:    filepath.Base(args[1]),
					ContentType: contentType,
					Content:     f,
				}, reqOpts...)
			})
		},
	}
	uploadCmd.Flags().String("content-type", "", "Evidence MIME type (default: guessed from the file extension)")

	vulnCmd.AddCommand(resolveCmd, uploadCmd)
	return vulnCmd
}

func newProjectCmd(a *app) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Project statistics and exports",
	}

	statsCmd := &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show project vulnerability counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				return client.Projects.Stats(ctx, args[0], reqOpts...)
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Export the raw project report without binaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				report, err := client.Projects.ExportRaw(ctx, args[0], reqOpts...)
				if err != nil {
					return nil, err
				}
				return json.RawMessage(report), nil
			})
		},
	}

	projectCmd.AddCommand(statsCmd, exportCmd)
	return projectCmd
}

func newEmailCmd(a *app) *cobra.Command {
	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Send notifications through AttackForge",
	}

	sendCmd := &cobra.Command{
		Use:   "send <payload.json|->",
		Short: "Send an email described by a JSON payload",
		Long: `Send an email through AttackForge. The payload is read from the given
file, or from stdin when the argument is "-", and forwarded as is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				ack, err := client.SendEmail(ctx, payload, reqOpts...)
				if err != nil {
					return nil, err
				}
				return json.RawMessage(ack), nil
			})
		},
	}

	emailCmd.AddCommand(sendCmd)
	return emailCmd
}

func readPayload(stdin io.Reader, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("payload %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
