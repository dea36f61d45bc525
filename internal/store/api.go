package store

import (
	"context"
	"io"
	"strings"

	vault "github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// APIConfig configures the HTTP API backend. Empty Address and Token fall
// back to VAULT_ADDR and VAULT_TOKEN.
type APIConfig struct {
	Address string
	Token   string
	Layout  Layout
}

// API stores secrets through the server's logical HTTP API.
type API struct {
	client *vault.Client
	layout Layout
	logger *zap.Logger
}

// NewAPI builds an API store. It does not contact the server.
func NewAPI(cfg APIConfig, logger *zap.Logger) (*API, error) {
	apiCfg := vault.DefaultConfig()
	if apiCfg.Error != nil {
		return nil, errors.Wrap(apiCfg.Error, "vault client config")
	}
	if addr := strings.TrimSpace(cfg.Address); addr != "" {
		apiCfg.Address = addr
	}
	client, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, errors.Wrap(err, "vault client")
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		client.SetToken(token)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{client: client, layout: cfg.Layout, logger: logger}, nil
}

func (a *API) read(ctx context.Context, name string) (*vault.Secret, string, error) {
	path, err := a.layout.Path(name)
	if err != nil {
		return nil, "", err
	}
	a.logger.Debug("api read", zap.String("path", path))
	secret, err := a.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, path, errors.Wrapf(err, "vault read %s", path)
	}
	if secret == nil || secret.Data == nil {
		return nil, path, nil
	}
	return secret, path, nil
}

// Read writes the payload field of the secret to w.
func (a *API) Read(ctx context.Context, name string, w io.Writer) error {
	secret, path, err := a.read(ctx, name)
	if err != nil {
		return err
	}
	if secret == nil {
		return errors.Wrap(ErrNotFound, path)
	}
	field := a.layout.field()
	raw, ok := secret.Data[field]
	if !ok {
		return errors.Wrapf(ErrNotFound, "%s has no field %q", path, field)
	}
	payload, ok := raw.(string)
	if !ok {
		return errors.Errorf("%s: field %q is %T, not a string", path, field, raw)
	}
	_, err = io.WriteString(w, payload)
	return errors.Wrap(err, "copy secret payload")
}

// Exists issues a single read; the server answers 404 for absent paths.
func (a *API) Exists(ctx context.Context, name string) (bool, error) {
	secret, _, err := a.read(ctx, name)
	if err != nil {
		return false, err
	}
	return secret != nil, nil
}

// Write reads r to EOF and stores it as the payload field.
func (a *API) Write(ctx context.Context, name string, r io.Reader) error {
	path, err := a.layout.Path(name)
	if err != nil {
		return err
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read payload")
	}
	a.logger.Debug("api write", zap.String("path", path), zap.Int("bytes", len(payload)))
	_, err = a.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		a.layout.field(): string(payload),
	})
	return errors.Wrapf(err, "vault write %s", path)
}
