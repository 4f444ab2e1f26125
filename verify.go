package attackforge

import (
	"context"
	"fmt"
	"log/slog"
)

// verifyEntity performs one lookup and extracts the identifying fields of
// kind from the single matching record.
func (r *requester) verifyEntity(ctx context.Context, rawURL string, kind EntityKind, opts []RequestOption) (*Entity, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}

	res, err := r.fetch(ctx, rawURL, string(kind), opts)
	if err != nil {
		return nil, err
	}

	count, err := intField(res, "count")
	if err != nil {
		return nil, &MalformedResponseError{Resource: string(kind), Err: err}
	}
	if count != 1 {
		r.logger.DebugContext(ctx, "lookup did not resolve to a single record",
			slog.String("kind", string(kind)), slog.Int64("count", count))
		return nil, &ResolutionError{Kind: kind, Count: count}
	}

	entity := &Entity{Kind: kind}
	switch kind {
	case EntityAsset:
		entity.ID, err = scalarField(res, "assets.0.id")
	case EntityWriteup:
		if entity.ID, err = scalarField(res, "vulnerabilities.0.id"); err == nil {
			entity.ReferenceID, err = scalarField(res, "vulnerabilities.0.reference_id")
		}
	case EntityVuln:
		entity.VulnerabilityID, err = scalarField(res, "vulnerabilities.0.vulnerability_id")
	}
	if err != nil {
		return nil, &MalformedResponseError{Resource: string(kind), Err: err}
	}

	return entity, nil
}
