package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/netbill/backend/internal/domain/network"
	"github.com/netbill/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRouterClient selects the router backend from configuration
func NewRouterClient(cfg config.RouterConfig, logger *zap.Logger) network.RouterClient {
	if cfg.Provider == "mikrotik" {
		return NewMikrotikRouterClient(cfg, logger)
	}
	return NewMockRouterClient(logger)
}

// MikrotikRouterClient manages PPPoE secrets through the RouterOS v7
// REST API.
type MikrotikRouterClient struct {
	cfg        config.RouterConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMikrotikRouterClient creates a RouterOS REST API client
func NewMikrotikRouterClient(cfg config.RouterConfig, logger *zap.Logger) *MikrotikRouterClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MikrotikRouterClient{
		cfg:        cfg,
		baseURL:    fmt.Sprintf("http://%s:%d/rest", cfg.Host, cfg.Port),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type pppSecret struct {
	ID       string `json:".id,omitempty"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Profile  string `json:"profile,omitempty"`
	Service  string `json:"service,omitempty"`
	Disabled string `json:"disabled,omitempty"`
}

type pppActive struct {
	Name string `json:"name"`
}

type interfaceStats struct {
	Name     string `json:"name"`
	RxBytes  string `json:"rx-byte"`
	TxBytes  string `json:"tx-byte"`
	Disabled string `json:"disabled"`
}

// CreateUser adds a PPP secret for the subscriber
func (r *MikrotikRouterClient) CreateUser(ctx context.Context, user network.RouterUser) error {
	secret := pppSecret{
		Name:     user.Username,
		Password: user.Password,
		Profile:  user.Profile,
		Service:  "pppoe",
		Disabled: strconv.FormatBool(user.Disabled),
	}
	if err := r.do(ctx, http.MethodPut, "/ppp/secret", secret, nil); err != nil {
		return fmt.Errorf("create router user %s: %w", user.Username, err)
	}
	r.logger.Info("Router user created",
		zap.String("username", user.Username),
		zap.String("profile", user.Profile),
	)
	return nil
}

// EnableUser re-enables the subscriber's PPP secret
func (r *MikrotikRouterClient) EnableUser(ctx context.Context, username string) error {
	return r.setDisabled(ctx, username, false)
}

// DisableUser disables the PPP secret and drops any active session
func (r *MikrotikRouterClient) DisableUser(ctx context.Context, username string) error {
	if err := r.setDisabled(ctx, username, true); err != nil {
		return err
	}
	// An established PPPoE session survives a disabled secret until it
	// reconnects, so the active connection is removed as well.
	if err := r.dropActiveSession(ctx, username); err != nil {
		r.logger.Warn("Failed to drop active session",
			zap.String("username", username),
			zap.Error(err),
		)
	}
	return nil
}

func (r *MikrotikRouterClient) setDisabled(ctx context.Context, username string, disabled bool) error {
	id, err := r.secretID(ctx, username)
	if err != nil {
		return err
	}
	patch := map[string]string{"disabled": strconv.FormatBool(disabled)}
	if err := r.do(ctx, http.MethodPatch, "/ppp/secret/"+id, patch, nil); err != nil {
		return fmt.Errorf("update router user %s: %w", username, err)
	}
	r.logger.Info("Router user state changed",
		zap.String("username", username),
		zap.Bool("disabled", disabled),
	)
	return nil
}

// RemoveUser deletes the subscriber's PPP secret
func (r *MikrotikRouterClient) RemoveUser(ctx context.Context, username string) error {
	id, err := r.secretID(ctx, username)
	if err != nil {
		return err
	}
	if err := r.do(ctx, http.MethodDelete, "/ppp/secret/"+id, nil, nil); err != nil {
		return fmt.Errorf("remove router user %s: %w", username, err)
	}
	if err := r.dropActiveSession(ctx, username); err != nil {
		r.logger.Warn("Failed to drop active session",
			zap.String("username", username),
			zap.Error(err),
		)
	}
	r.logger.Info("Router user removed", zap.String("username", username))
	return nil
}

// FetchUsage reads traffic counters from the per-subscriber dynamic
// PPPoE interfaces. RouterOS names them "<pppoe-username>".
func (r *MikrotikRouterClient) FetchUsage(ctx context.Context) ([]network.UsageSample, error) {
	var stats []interfaceStats
	if err := r.do(ctx, http.MethodGet, "/interface?type=pppoe-in", nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch usage: %w", err)
	}

	now := time.Now()
	samples := make([]network.UsageSample, 0, len(stats))
	for _, iface := range stats {
		username := strings.TrimSuffix(strings.TrimPrefix(iface.Name, "<pppoe-"), ">")
		if username == iface.Name || username == "" {
			continue
		}
		// On a pppoe-in interface tx is traffic toward the subscriber.
		download, _ := strconv.ParseInt(iface.TxBytes, 10, 64)
		upload, _ := strconv.ParseInt(iface.RxBytes, 10, 64)
		samples = append(samples, network.UsageSample{
			Username:      username,
			DownloadBytes: download,
			UploadBytes:   upload,
			SampledAt:     now,
		})
	}
	return samples, nil
}

type systemResource struct {
	Uptime      string `json:"uptime"`
	Version     string `json:"version"`
	BoardName   string `json:"board-name"`
	CPULoad     string `json:"cpu-load"`
	FreeMemory  string `json:"free-memory"`
	TotalMemory string `json:"total-memory"`
}

// Resources reads the router's health counters
func (r *MikrotikRouterClient) Resources(ctx context.Context) (*network.RouterResources, error) {
	var res systemResource
	if err := r.do(ctx, http.MethodGet, "/system/resource", nil, &res); err != nil {
		return nil, fmt.Errorf("fetch router resources: %w", err)
	}

	// RouterOS REST returns numeric fields as strings.
	cpu, _ := strconv.Atoi(res.CPULoad)
	free, _ := strconv.ParseInt(res.FreeMemory, 10, 64)
	total, _ := strconv.ParseInt(res.TotalMemory, 10, 64)
	return &network.RouterResources{
		Uptime:      res.Uptime,
		Version:     res.Version,
		BoardName:   res.BoardName,
		CPULoad:     cpu,
		FreeMemory:  free,
		TotalMemory: total,
	}, nil
}

// Ping checks that the REST API answers
func (r *MikrotikRouterClient) Ping(ctx context.Context) error {
	var out []map[string]any
	if err := r.do(ctx, http.MethodGet, "/system/identity", nil, &out); err != nil {
		return fmt.Errorf("router ping: %w", err)
	}
	return nil
}

func (r *MikrotikRouterClient) secretID(ctx context.Context, username string) (string, error) {
	var secrets []pppSecret
	if err := r.do(ctx, http.MethodGet, "/ppp/secret?name="+username, nil, &secrets); err != nil {
		return "", fmt.Errorf("lookup router user %s: %w", username, err)
	}
	if len(secrets) == 0 {
		return "", fmt.Errorf("router user %s not found", username)
	}
	return secrets[0].ID, nil
}

func (r *MikrotikRouterClient) dropActiveSession(ctx context.Context, username string) error {
	var active []struct {
		ID   string `json:".id"`
		Name string `json:"name"`
	}
	if err := r.do(ctx, http.MethodGet, "/ppp/active?name="+username, nil, &active); err != nil {
		return err
	}
	for _, session := range active {
		if err := r.do(ctx, http.MethodDelete, "/ppp/active/"+session.ID, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *MikrotikRouterClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.cfg.User, r.cfg.Password)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("routeros %s %s: status %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("routeros %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

var _ network.RouterClient = (*MikrotikRouterClient)(nil)
