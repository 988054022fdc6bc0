package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netbill/backend/internal/domain/network"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeRouterClient stubs the router port with canned answers
type fakeRouterClient struct {
	pingErr   error
	resources *network.RouterResources
	samples   []network.UsageSample
}

func (f *fakeRouterClient) CreateUser(ctx context.Context, user network.RouterUser) error {
	return nil
}

func (f *fakeRouterClient) EnableUser(ctx context.Context, username string) error {
	return nil
}

func (f *fakeRouterClient) DisableUser(ctx context.Context, username string) error {
	return nil
}

func (f *fakeRouterClient) RemoveUser(ctx context.Context, username string) error {
	return nil
}

func (f *fakeRouterClient) FetchUsage(ctx context.Context) ([]network.UsageSample, error) {
	return f.samples, nil
}

func (f *fakeRouterClient) Resources(ctx context.Context) (*network.RouterResources, error) {
	if f.resources == nil {
		return nil, errors.New("connection refused")
	}
	return f.resources, nil
}

func (f *fakeRouterClient) Ping(ctx context.Context) error {
	return f.pingErr
}

func setupNetworkRouter(client network.RouterClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewNetworkHandler(client, zap.NewNop()).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestNetworkHandler_StatusOnline(t *testing.T) {
	engine := setupNetworkRouter(&fakeRouterClient{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/network/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online":true`)
}

func TestNetworkHandler_StatusOffline(t *testing.T) {
	engine := setupNetworkRouter(&fakeRouterClient{pingErr: errors.New("connection refused")})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/network/status", nil))

	// Unreachable router is still a successful status check
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online":false`)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestNetworkHandler_Resources(t *testing.T) {
	engine := setupNetworkRouter(&fakeRouterClient{resources: &network.RouterResources{
		Uptime:      "1w2d",
		Version:     "7.14.2",
		BoardName:   "hEX S",
		CPULoad:     7,
		FreeMemory:  512 << 20,
		TotalMemory: 1 << 30,
	}})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/network/resources", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"board_name":"hEX S"`)
	assert.Contains(t, w.Body.String(), `"cpu_load":7`)
}

func TestNetworkHandler_ResourcesGatewayDown(t *testing.T) {
	engine := setupNetworkRouter(&fakeRouterClient{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/network/resources", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_UNAVAILABLE")
}

func TestNetworkHandler_Interfaces(t *testing.T) {
	engine := setupNetworkRouter(&fakeRouterClient{samples: []network.UsageSample{
		{Username: "jkamau", DownloadBytes: 1024, UploadBytes: 256, SampledAt: time.Now()},
	}})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/network/interfaces", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"jkamau"`)
	assert.Contains(t, w.Body.String(), `"download_bytes":1024`)
}
