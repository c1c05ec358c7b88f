package fetch

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockStatus     BlockType = "status"
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockChallenge  BlockType = "challenge"
	BlockThinBody   BlockType = "thin_body"
)

// blockPhrases are challenge-page signatures, matched case-insensitively
// against the body.
var blockPhrases = []string{
	"access denied",
	"just a moment",
	"verify you are human",
	"checking your browser",
	"cf-browser-verification",
	"bot protection",
	"suspicious activity",
	"verification required",
	"human verification",
}

// DetectBlock checks a response for signs of anti-bot protection.
func DetectBlock(status int, header http.Header, body []byte) (bool, BlockType) {
	// Block statuses outright; cf-* headers refine the type.
	if status == http.StatusForbidden || status == http.StatusTooManyRequests ||
		status == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" ||
			strings.EqualFold(header.Get("Server"), "cloudflare") {
			return true, BlockCloudflare
		}
		return true, BlockStatus
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "captcha") { // covers recaptcha and hcaptcha too
		return true, BlockCaptcha
	}
	for _, phrase := range blockPhrases {
		if strings.Contains(lower, phrase) {
			return true, BlockChallenge
		}
	}
	if strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return true, BlockCloudflare
	}

	// A cloudflare server header on a tiny body is an interstitial even
	// without a known phrase.
	if strings.EqualFold(header.Get("Server"), "cloudflare") && len(body) < 1000 {
		return true, BlockCloudflare
	}

	// A 200 with almost no content is a soft block.
	if status == http.StatusOK && len(body) < 100 {
		return true, BlockThinBody
	}

	return false, BlockNone
}
