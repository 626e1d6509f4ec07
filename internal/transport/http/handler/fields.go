package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ErlanBelekov/companydesk/internal/validation"
	"github.com/gin-gonic/gin"
)

// fieldValidator is the subset of validation.Validator handlers need.
type fieldValidator interface {
	Validate(raw map[string]string, fields ...string) (map[string]string, error)
}

// bodyFields reads a flat JSON object. Strings and numbers become field
// values; anything else is treated as absent, as is an unreadable body.
func bodyFields(c *gin.Context) map[string]string {
	out := map[string]string{}

	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return out
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return out
	}

	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out
}

// respondInvalid writes the 400 for a failed field check.
func respondInvalid(c *gin.Context, err error) {
	var fe *validation.FieldError
	if !errors.As(err, &fe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": fe.Message(), "field": fe.Field})
}
