package attackforge

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/multierr"

	"github.com/tphakala/go-attackforge/internal/api"
)

// ProjectService provides operations on projects.
type ProjectService interface {
	// Stats returns the vulnerability counters of a project. The call fails
	// if any counter is missing from the project record.
	Stats(ctx context.Context, projectID string, opts ...RequestOption) (*ProjectStats, error)

	// ExportRaw returns the raw project report, without binaries, as JSON text.
	ExportRaw(ctx context.Context, projectID string, opts ...RequestOption) (string, error)
}

// projectService implements ProjectService.
type projectService struct {
	r *requester
}

func newProjectService(r *requester) *projectService {
	return &projectService{r: r}
}

// Stats fetches a project and copies its vulnerability counters.
func (s *projectService) Stats(ctx context.Context, projectID string, opts ...RequestOption) (*ProjectStats, error) {
	if err := requiredArg("project ID", projectID); err != nil {
		return nil, err
	}

	res, err := s.r.fetch(ctx, BuildURL("project/"+url.PathEscape(projectID)), "project", opts)
	if err != nil {
		return nil, err
	}

	project := res.Get("project")
	if !project.IsObject() {
		return nil, &MalformedResponseError{Resource: "project", Err: &MissingFieldError{Path: "project"}}
	}

	stats := &ProjectStats{}
	var errs error
	for _, c := range projectCounters {
		v, err := intField(project, "project_"+c.key)
		if err != nil {
			errs = multierr.Append(errs, &MissingFieldError{Path: "project.project_" + c.key})
			continue
		}
		*c.field(stats) = v
	}
	if errs != nil {
		return nil, &MalformedResponseError{Resource: "project", Err: errs}
	}

	return stats, nil
}

// ExportRaw downloads the raw project report.
func (s *projectService) ExportRaw(ctx context.Context, projectID string, opts ...RequestOption) (string, error) {
	if err := requiredArg("project ID", projectID); err != nil {
		return "", err
	}

	endpoint := "project/" + url.PathEscape(projectID) + "/report/raw?excludeBinaries=true"
	body, err := s.r.do(ctx, &api.Request{Method: http.MethodGet, URL: BuildURL(endpoint)}, opts)
	if err != nil {
		return "", err
	}
	return compactJSON(body, "project report")
}
