// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"encoding/json"
	"net/http"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
