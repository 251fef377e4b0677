package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailcast/mailcast/internal/model"
)

// Provision registers key and creates its tenant in lockstep. If the tenant
// cannot be written the key is revoked again so the registry never holds a
// key without a tenant.
func Provision(ctx context.Context, keys *KeyStore, tenants *TenantDirectory, key model.APIKey, senderEmail, senderCredential string) error {
	if err := keys.Register(ctx, key); err != nil {
		return err
	}

	if err := tenants.Create(ctx, key, senderEmail, senderCredential); err != nil {
		if rbErr := keys.Revoke(ctx, key); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback key registration: %w", rbErr))
		}
		return err
	}
	return nil
}
