package tiers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterGin()
	r := gin.New()
	SetupTierRoutes(r.Group("/api/v1"), NewController(svc))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestController_CreateAndGet(t *testing.T) {
	svc, _, eventID, _ := setup()
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/events/"+eventID.String()+"/tiers", map[string]interface{}{
		"name":       "VIP",
		"prices":     []int64{50000, 80000},
		"quantities": []int{5, 5},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data TierResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 10, created.Data.TotalPool)
	assert.Equal(t, int64(50000), created.Data.MinPrice)
	assert.Equal(t, int64(80000), created.Data.MaxPrice)

	w = doJSON(r, http.MethodGet, "/api/v1/tiers/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestController_CreateLengthMismatch(t *testing.T) {
	svc, _, eventID, _ := setup()
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/events/"+eventID.String()+"/tiers", map[string]interface{}{
		"name":       "VIP",
		"prices":     []int64{50000, 80000},
		"quantities": []int{5},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"quantities"`)
}

func TestController_NegativePriceReportsField(t *testing.T) {
	svc, _, eventID, _ := setup()
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/events/"+eventID.String()+"/tiers", map[string]interface{}{
		"name":  "VIP",
		"bands": []map[string]int64{{"price": -1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"bands[0].price"`)
}

func TestController_GetUnknownTier(t *testing.T) {
	svc, _, _, _ := setup()
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/tiers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/tiers/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_DeleteIsSoft(t *testing.T) {
	svc, repo, eventID, _ := setup()
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/events/"+eventID.String()+"/tiers", map[string]interface{}{"name": "GA"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data TierResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodDelete, "/api/v1/tiers/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TierStatusCancelled, repo.tiers[uuid.MustParse(created.Data.ID)].Status)
}
