package fetch

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	bigBody := []byte("<html><body>" + strings.Repeat("ordinary page content ", 20) + "</body></html>")

	tests := []struct {
		name    string
		status  int
		header  http.Header
		body    []byte
		blocked bool
		kind    BlockType
	}{
		{
			name:    "plain 403",
			status:  403,
			header:  http.Header{},
			body:    bigBody,
			blocked: true,
			kind:    BlockStatus,
		},
		{
			name:    "403 with cf-ray header",
			status:  403,
			header:  http.Header{"Cf-Ray": []string{"8a1b2c3d"}},
			body:    bigBody,
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "429 rate limited",
			status:  429,
			header:  http.Header{},
			body:    bigBody,
			blocked: true,
			kind:    BlockStatus,
		},
		{
			name:    "503 behind cloudflare server header",
			status:  503,
			header:  http.Header{"Server": []string{"cloudflare"}},
			body:    bigBody,
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "captcha interstitial",
			status:  200,
			header:  http.Header{},
			body:    []byte("<html><body>Please complete the reCAPTCHA to continue to the site you requested</body></html>"),
			blocked: true,
			kind:    BlockCaptcha,
		},
		{
			name:    "challenge phrase",
			status:  200,
			header:  http.Header{},
			body:    []byte("<html><body><h2>Checking your browser before accessing example.com. This process is automatic.</h2></body></html>"),
			blocked: true,
			kind:    BlockChallenge,
		},
		{
			name:    "cloudflare header with tiny body",
			status:  200,
			header:  http.Header{"Server": []string{"cloudflare"}},
			body:    []byte("<html><body>one moment</body></html>"),
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "thin 200 body",
			status:  200,
			header:  http.Header{},
			body:    []byte("ok"),
			blocked: true,
			kind:    BlockThinBody,
		},
		{
			name:    "healthy page",
			status:  200,
			header:  http.Header{},
			body:    bigBody,
			blocked: false,
			kind:    BlockNone,
		},
		{
			name:    "404 is not a block",
			status:  404,
			header:  http.Header{},
			body:    bigBody,
			blocked: false,
			kind:    BlockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocked, kind := DetectBlock(tt.status, tt.header, tt.body)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
