package rest

import (
	"context"
	"mime"
	"net/http"
	"net/url"

	"go-jobmatch-web/internal/domain"
)

type uploadGateway struct {
	client *Client
}

func NewUploadGateway(client *Client) domain.UploadGateway {
	return &uploadGateway{client: client}
}

// Resume streams a stored resume. The caller must close the returned body.
func (g *uploadGateway) Resume(ctx context.Context, filename string) (*domain.ResumeDownload, error) {
	req, err := g.client.newRequest(ctx, http.MethodGet, "/upload/resume/"+url.PathEscape(filename), nil, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := g.client.send(req)
	if err != nil {
		return nil, err
	}

	download := &domain.ResumeDownload{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Filename:      filename,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		download.Filename = params["filename"]
	}
	return download, nil
}
