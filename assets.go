package attackforge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

const assetLibraryEndpoint = "library/assets"

// AssetService provides operations on AttackForge assets.
type AssetService interface {
	// Resolve returns the ID of the single library asset imported with
	// externalID. Zero or several matches yield an error matching ErrUnresolved.
	Resolve(ctx context.Context, externalID string, opts ...RequestOption) (string, error)

	// FirstID returns the ID of the first asset listed by endpoint for query,
	// without checking how many matched.
	FirstID(ctx context.Context, endpoint, query string, opts ...RequestOption) (string, error)

	// Index lists the assets matching query and indexes them by name.
	// Malformed records are logged and skipped.
	Index(ctx context.Context, endpoint, query string, opts ...RequestOption) (AssetIndex, error)
}

// assetService implements AssetService.
type assetService struct {
	r *requester
}

func newAssetService(r *requester) *assetService {
	return &assetService{r: r}
}

// Resolve returns the asset ID for an external ID.
func (s *assetService) Resolve(ctx context.Context, externalID string, opts ...RequestOption) (string, error) {
	if err := requiredArg("external ID", externalID); err != nil {
		return "", err
	}

	rawURL := BuildURL(assetLibraryEndpoint, WithFilter(ExternalIDFilter(externalID)))
	entity, err := s.r.verifyEntity(ctx, rawURL, EntityAsset, opts)
	if err != nil {
		return "", err
	}
	return entity.ID, nil
}

// FirstID returns the ID of the first listed asset.
func (s *assetService) FirstID(ctx context.Context, endpoint, query string, opts ...RequestOption) (string, error) {
	if err := requiredArg("endpoint", endpoint); err != nil {
		return "", err
	}

	res, err := s.r.fetch(ctx, BuildURL(endpoint, WithQuery(query)), "asset list", opts)
	if err != nil {
		return "", err
	}

	id, err := scalarField(res, "assets.0.id")
	if err != nil {
		return "", &MalformedResponseError{Resource: "asset list", Err: err}
	}
	return id, nil
}

// Index builds a name-keyed index of the listed assets. Later records with a
// duplicate name replace earlier ones.
func (s *assetService) Index(ctx context.Context, endpoint, query string, opts ...RequestOption) (AssetIndex, error) {
	if err := requiredArg("endpoint", endpoint); err != nil {
		return nil, err
	}

	res, err := s.r.fetch(ctx, BuildURL(endpoint, WithQuery(query)), "asset list", opts)
	if err != nil {
		return nil, err
	}

	index := make(AssetIndex)

	assets := res.Get("assets")
	if assets.Exists() && !assets.IsArray() {
		s.r.logger.WarnContext(ctx, "asset list is not an array, nothing indexed",
			slog.String("type", assets.Type.String()))
		return index, nil
	}

	for i, asset := range assets.Array() {
		name, entry, err := indexEntry(asset)
		if err != nil {
			s.r.logger.WarnContext(ctx, "skipping malformed asset",
				slog.Int("index", i),
				slog.String("asset", assetLabel(asset)),
				slog.Any("error", err))
			continue
		}
		index[name] = entry
	}

	return index, nil
}

var errAssetNotObject = errors.New("asset record is not an object")

func indexEntry(asset gjson.Result) (string, AssetIndexEntry, error) {
	if !asset.IsObject() {
		return "", AssetIndexEntry{}, errAssetNotObject
	}

	var errs error
	name, err := listedField(asset, "name")
	errs = multierr.Append(errs, err)
	id, err := listedField(asset, "id")
	errs = multierr.Append(errs, err)
	externalID, err := listedField(asset, "external_id")
	errs = multierr.Append(errs, err)
	if errs != nil {
		return "", AssetIndexEntry{}, errs
	}

	entry := AssetIndexEntry{ID: id, ExternalID: externalID}
	if projects := asset.Get("projects"); projects.IsArray() {
		list, _ := projects.Value().([]any)
		if list == nil {
			list = []any{}
		}
		entry.Projects = list
	}
	return name, entry, nil
}

// listedField reads a field of a listed asset. Only a missing key or a nested
// object or array is an error; null reads as "" and other scalars keep their
// JSON text.
func listedField(asset gjson.Result, path string) (string, error) {
	v := asset.Get(path)
	switch {
	case !v.Exists(), v.IsObject(), v.IsArray():
		return "", &MissingFieldError{Path: path}
	case v.Type == gjson.Null:
		return "", nil
	case v.Type == gjson.String:
		return v.String(), nil
	default:
		return v.Raw, nil
	}
}

func assetLabel(asset gjson.Result) string {
	if name := asset.Get("name"); name.Exists() && name.Type != gjson.Null {
		return name.String()
	}
	return "unknown"
}
