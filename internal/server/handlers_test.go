package server

import (
	"net/http"
	"testing"

	"launchpad/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductLifecycle(t *testing.T) {
	e := newTestEnv(t)
	owner := e.token("owner")
	visitor := e.token("visitor")
	admin := e.admin("admin")

	resp, body := e.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name":       "Rocket",
		"headline":   "Ship faster",
		"logo":       "https://img.test/rocket.png",
		"images":     []string{"a.png", "b.png"},
		"categories": []string{"AI"},
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	product := decode[models.Product](t, body)
	assert.Equal(t, models.ProductStatusPending, product.Status)
	assert.Equal(t, "rocket", product.Slug)

	resp, body = e.do(http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Product](t, body), "pending products stay off the feed")

	resp, body = e.do(http.MethodGet, "/api/admin/products/pending", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, body), 1)

	resp, _ = e.do(http.MethodPost, "/api/admin/products/"+product.ID+"/activate", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, body), 1)

	resp, body = e.do(http.MethodGet, "/api/products/slug/rocket", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, product.ID, decode[models.Product](t, body).ID)

	resp, body = e.do(http.MethodPost, "/api/products/"+product.ID+"/comments", map[string]string{"body": "Love it"}, visitor)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "https://img.test/visitor.png", decode[models.Comment](t, body).ProfilePicture)

	resp, body = e.do(http.MethodPost, "/api/products/"+product.ID+"/upvote", nil, visitor)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.UpvoteResult{Upvoted: true, Count: 1}, decode[models.UpvoteResult](t, body))

	resp, body = e.do(http.MethodGet, "/api/notifications", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Notification](t, body)
	require.Len(t, notes, 3)
	types := []models.NotificationType{notes[0].Type, notes[1].Type, notes[2].Type}
	assert.ElementsMatch(t, []models.NotificationType{models.NotificationActivated, models.NotificationComment, models.NotificationUpvote}, types)

	resp, body = e.do(http.MethodGet, "/api/notifications/unread-count", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decode[map[string]interface{}](t, body)["count"])

	resp, _ = e.do(http.MethodPost, "/api/notifications/"+notes[0].ID+"/read", nil, visitor)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(http.MethodPost, "/api/notifications/"+notes[0].ID+"/read", nil, owner)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = e.do(http.MethodPost, "/api/notifications/read-all", nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decode[map[string]interface{}](t, body)["updated"])

	resp, body = e.do(http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[models.AdminStats](t, body)
	assert.Equal(t, int64(1), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.Upvotes)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	e := newTestEnv(t)
	owner := e.token("owner")
	other := e.token("other")

	resp, body := e.do(http.MethodPost, "/api/products", map[string]interface{}{
		"name":   "Rocket",
		"images": []string{"a.png", "b.png"},
	}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	product := decode[models.Product](t, body)

	update := map[string]interface{}{"name": "Rocket", "images": []string{"c.png"}}

	resp, _ = e.do(http.MethodPut, "/api/products/"+product.ID, update, other)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(http.MethodPut, "/api/products/"+product.ID, update, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decode[struct {
		Previous models.Product `json:"previous"`
		Product  models.Product `json:"product"`
	}](t, body)
	assert.Len(t, out.Previous.Images, 2)
	require.Len(t, out.Product.Images, 1)
	assert.Equal(t, "c.png", out.Product.Images[0].URL)

	resp, _ = e.do(http.MethodDelete, "/api/products/"+product.ID, nil, other)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(http.MethodDelete, "/api/products/"+product.ID, nil, owner)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/products/"+product.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorStatuses(t *testing.T) {
	e := newTestEnv(t)
	owner := e.token("owner")
	admin := e.admin("admin")

	resp, body := e.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "Rocket"}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	product := decode[models.Product](t, body)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		token  string
		want   int
	}{
		{"create anonymous", http.MethodPost, "/api/products", map[string]string{"name": "X"}, "", http.StatusUnauthorized},
		{"create with bad token", http.MethodPost, "/api/products", map[string]string{"name": "X"}, "garbage", http.StatusUnauthorized},
		{"create invalid", http.MethodPost, "/api/products", map[string]string{"name": ""}, owner, http.StatusBadRequest},
		{"create duplicate slug", http.MethodPost, "/api/products", map[string]string{"name": "Rocket"}, owner, http.StatusConflict},
		{"get missing", http.MethodGet, "/api/products/missing", nil, "", http.StatusNotFound},
		{"pending page hidden", http.MethodGet, "/api/products/slug/rocket", nil, "", http.StatusNotFound},
		{"activate as owner", http.MethodPost, "/api/admin/products/" + product.ID + "/activate", nil, owner, http.StatusForbidden},
		{"reject without reason", http.MethodPost, "/api/admin/products/" + product.ID + "/reject", map[string]string{}, admin, http.StatusBadRequest},
		{"comment empty", http.MethodPost, "/api/products/" + product.ID + "/comments", map[string]string{"body": " "}, owner, http.StatusBadRequest},
		{"upvote missing", http.MethodPost, "/api/products/missing/upvote", nil, owner, http.StatusNotFound},
		{"notifications anonymous", http.MethodGet, "/api/notifications", nil, "", http.StatusUnauthorized},
		{"optional auth rejects bad token", http.MethodGet, "/api/me/products", nil, "garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := e.do(tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, resp.StatusCode, string(body))
		})
	}

	resp, _ = e.do(http.MethodPost, "/api/admin/products/"+product.ID+"/activate", nil, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(http.MethodPost, "/api/admin/products/"+product.ID+"/activate", nil, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetMyProducts_Anonymous(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(http.MethodGet, "/api/me/products", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))
}

func TestWebsocketRoute_RequiresTokenAndUpgrade(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.do(http.MethodGet, "/api/ws", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/ws?token="+e.token("owner"), nil, "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestLocalDeliveryWithoutRedis(t *testing.T) {
	e := newTestEnv(t)
	owner := e.token("owner")
	visitor := e.token("visitor")

	resp, body := e.do(http.MethodPost, "/api/products", map[string]interface{}{"name": "Rocket"}, owner)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	product := decode[models.Product](t, body)

	client, err := e.s.hub.Register("owner", nil)
	require.NoError(t, err)

	resp, _ = e.do(http.MethodPost, "/api/products/"+product.ID+"/comments", map[string]string{"body": "Nice"}, visitor)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, client.Send, 1)
	assert.Contains(t, string(<-client.Send), `"type":"COMMENT"`)
}
