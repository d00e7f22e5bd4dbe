package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func bodyDetails(t *testing.T, res response) []fieldDetail {
	t.Helper()
	var details []fieldDetail
	require.NoError(t, json.Unmarshal(res.Body.Details, &details))
	return details
}

func TestBindReportsWrongTypeByField(t *testing.T) {
	r, _ := testimonialSetup()

	res := do(t, r, http.MethodPost, "/testimonials", "", gin.H{
		"name":    "Ann",
		"content": "Lovely people to deal with",
		"rating":  "five",
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid request body", res.Body.Message)
	assert.Equal(t, []fieldDetail{{Field: "rating", Message: "has the wrong type"}}, bodyDetails(t, res))
	assert.NotContains(t, res.Raw.Body.String(), "Go struct")
	assert.NotContains(t, res.Raw.Body.String(), "of type")
}

func TestBindReportsWrongTypeInForm(t *testing.T) {
	f := carSetup()

	fields := validCarFields()
	fields["year"] = "new"
	res := doMultipart(t, f.r, http.MethodPost, "/cars", "admin", fields)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid request body", res.Body.Message)
	assert.Equal(t, []fieldDetail{{Field: "year", Message: "has the wrong type"}}, bodyDetails(t, res))
	assert.NotContains(t, res.Raw.Body.String(), "strconv")
}

func TestBindRejectsBrokenJSON(t *testing.T) {
	r, _ := testimonialSetup()

	tests := []struct {
		body, message string
	}{
		{`{"name": "Ann",`, "is not valid JSON"},
		{`{"name" "Ann"}`, "is not valid JSON"},
		{``, "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/testimonials", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			res := serve(t, r, req, "")

			require.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, "Invalid request body", res.Body.Message)
			assert.Equal(t, []fieldDetail{{Field: "body", Message: tt.message}}, bodyDetails(t, res))
		})
	}
}
