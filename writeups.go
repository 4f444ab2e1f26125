package attackforge

import "context"

const writeupLibraryEndpoint = "library"

// WriteupService provides operations on writeup libraries.
type WriteupService interface {
	// Resolve returns the writeup in libraryID tagged with pluginID.
	// Zero or several matches yield an error matching ErrUnresolved.
	Resolve(ctx context.Context, pluginID, libraryID string, opts ...RequestOption) (*WriteupRef, error)
}

// writeupService implements WriteupService.
type writeupService struct {
	r *requester
}

func newWriteupService(r *requester) *writeupService {
	return &writeupService{r: r}
}

// Resolve finds a writeup by scanner plugin ID within one library.
func (s *writeupService) Resolve(ctx context.Context, pluginID, libraryID string, opts ...RequestOption) (*WriteupRef, error) {
	if err := requiredArg("plugin ID", pluginID); err != nil {
		return nil, err
	}
	if err := requiredArg("library ID", libraryID); err != nil {
		return nil, err
	}

	filter := LibraryScope(PluginFilter(pluginID), libraryID)
	entity, err := s.r.verifyEntity(ctx, BuildURL(writeupLibraryEndpoint, WithFilter(filter)), EntityWriteup, opts)
	if err != nil {
		return nil, err
	}
	return &WriteupRef{ID: entity.ID, ReferenceID: entity.ReferenceID}, nil
}
