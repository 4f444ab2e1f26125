package attackforge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tphakala/go-attackforge/internal/api"
)

// VulnerabilityService provides operations on project vulnerabilities.
type VulnerabilityService interface {
	// Resolve returns the vulnerability ID of the single vulnerability in
	// projectID tagged with pluginID. Zero or several matches yield an error
	// matching ErrUnresolved.
	Resolve(ctx context.Context, pluginID, projectID string, opts ...RequestOption) (string, error)

	// UploadEvidence attaches a file to a vulnerability. The file name is
	// also used as the evidence description.
	UploadEvidence(ctx context.Context, vulnID string, evidence *Evidence, opts ...RequestOption) (json.RawMessage, error)
}

// vulnerabilityService implements VulnerabilityService.
type vulnerabilityService struct {
	r *requester
}

func newVulnerabilityService(r *requester) *vulnerabilityService {
	return &vulnerabilityService{r: r}
}

// Resolve finds a project vulnerability by scanner plugin ID.
func (s *vulnerabilityService) Resolve(ctx context.Context, pluginID, projectID string, opts ...RequestOption) (string, error) {
	if err := requiredArg("plugin ID", pluginID); err != nil {
		return "", err
	}
	if err := requiredArg("project ID", projectID); err != nil {
		return "", err
	}

	endpoint := "project/" + url.PathEscape(projectID) + "/vulnerabilities"
	entity, err := s.r.verifyEntity(ctx, BuildURL(endpoint, WithFilter(PluginFilter(pluginID))), EntityVuln, opts)
	if err != nil {
		return "", err
	}
	return entity.VulnerabilityID, nil
}

// UploadEvidence uploads a file as vulnerability evidence.
func (s *vulnerabilityService) UploadEvidence(ctx context.Context, vulnID string, evidence *Evidence, opts ...RequestOption) (json.RawMessage, error) {
	if err := requiredArg("vulnerability ID", vulnID); err != nil {
		return nil, err
	}
	if evidence == nil || evidence.Content == nil {
		return nil, &ValidationError{APIError: APIError{Message: "evidence content is required"}}
	}
	if err := requiredArg("evidence file name", evidence.FileName); err != nil {
		return nil, err
	}

	return s.r.do(ctx, &api.Request{
		Method: http.MethodPost,
		URL:    "vulnerability/" + url.PathEscape(vulnID) + "/evidence",
		Multipart: &api.Multipart{
			FieldName:   "file",
			FileName:    evidence.FileName,
			ContentType: evidence.ContentType,
			Content:     evidence.Content,
			Fields:      map[string]string{"description": evidence.FileName},
		},
	}, opts)
}
