package inventory

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/erazemk/assetpro/internal/access"
	"github.com/erazemk/assetpro/internal/imaging"
	"github.com/erazemk/assetpro/internal/model"
)

// LookupPath is the API path a label URL points at.
const LookupPath = "/api/lookup"

const codeField = "CODE:"

// Payload returns what an asset's QR label encodes: a lookup URL when a base
// URL is configured, a text block otherwise.
func (s *Service) Payload(a *model.Asset) string {
	if s.cfg.BaseURL != "" {
		return LookupURL(s.cfg.BaseURL, a.Code)
	}
	return TextPayload(a)
}

// LookupURL returns the lookup URL for code under base.
func LookupURL(base, code string) string {
	return strings.TrimRight(base, "/") + LookupPath + "?" + url.Values{"code": {code}}.Encode()
}

// TextPayload renders the asset as a block of "FIELD: value" lines.
func TextPayload(a *model.Asset) string {
	typ := a.TypeLabel
	if typ == "" {
		typ = a.TypeCode
	}
	lines := []string{
		codeField + " " + a.Code,
		"NAME: " + oneLine(a.Name),
		"TYPE: " + oneLine(typ),
		"LOCATION: " + oneLine(a.Location),
		"CUSTODIAN: " + oneLine(a.CustodianName),
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParsePayload recovers the asset code from a label payload in either form.
func ParsePayload(payload string) (string, bool) {
	payload = strings.TrimSpace(payload)

	if u, err := url.Parse(payload); err == nil && u.Scheme != "" && u.Host != "" {
		if code := u.Query().Get("code"); code != "" {
			return code, true
		}
		return "", false
	}

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if code, ok := strings.CutPrefix(line, codeField); ok {
			code = strings.TrimSpace(code)
			return code, code != ""
		}
	}
	return "", false
}

// AssetLabel renders a printable PNG label for an asset: its QR code with
// the code and name underneath.
func (s *Service) AssetLabel(ctx context.Context, actor model.Identity, code string) ([]byte, error) {
	if err := access.Check(actor, access.PrintLabel); err != nil {
		return nil, err
	}
	asset, err := s.assetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	png, err := imaging.Label(s.Payload(asset), []string{asset.Code, asset.Name}, imaging.LabelSize)
	if err != nil {
		return nil, fmt.Errorf("rendering label for %s: %w", code, err)
	}
	return png, nil
}

// Lookup resolves a scanned label, or a bare code, to its asset.
func (s *Service) Lookup(ctx context.Context, actor model.Identity, scanned string) (*model.Asset, error) {
	if err := access.Check(actor, access.ViewAsset); err != nil {
		return nil, err
	}

	code, ok := ParsePayload(scanned)
	if !ok {
		code = strings.TrimSpace(scanned)
	}
	if code == "" {
		return nil, invalid("nothing to look up")
	}
	return s.assetByCode(ctx, code)
}
