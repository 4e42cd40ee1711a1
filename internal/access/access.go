// Package access maps roles to the operations they may perform.
package access

import (
	"fmt"

	"github.com/erazemk/assetpro/internal/model"
)

// Operation names an entry point of the inventory.
type Operation string

// Read operations.
const (
	ListAssets     Operation = "list_assets"
	ViewAsset      Operation = "view_asset"
	ListAssetTypes Operation = "list_asset_types"
	ViewHistory    Operation = "view_history"
	PrintLabel     Operation = "print_label"
	ViewDashboard  Operation = "view_dashboard"
	ChangePassword Operation = "change_password"
	ListUsers      Operation = "list_users"
)

// Mutating operations.
const (
	CreateAsset       Operation = "create_asset"
	UpdateAsset       Operation = "update_asset"
	CreateAssetType   Operation = "create_asset_type"
	DeleteAssetType   Operation = "delete_asset_type"
	CreateUser        Operation = "create_user"
	UpdateUser        Operation = "update_user"
	DeleteUser        Operation = "delete_user"
	TransferCustody   Operation = "transfer_custody"
	RecordMaintenance Operation = "record_maintenance"
)

// userOperations are the operations open to the user role. Admins may do
// everything.
var userOperations = map[Operation]bool{
	ListAssets:     true,
	ViewAsset:      true,
	ListAssetTypes: true,
	ViewHistory:    true,
	PrintLabel:     true,
	ViewDashboard:  true,
	ChangePassword: true,
}

// Allowed reports whether role may perform op. Unknown roles are denied.
func Allowed(op Operation, role string) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleUser:
		return userOperations[op]
	default:
		return false
	}
}

// Check returns model.ErrUnauthenticated for an empty identity and
// model.ErrForbidden when the identity's role may not perform op.
func Check(id model.Identity, op Operation) error {
	if id.IsZero() {
		return fmt.Errorf("%w: no identity for %s", model.ErrUnauthenticated, op)
	}
	if !Allowed(op, id.Role) {
		return fmt.Errorf("%w: %s may not %s", model.ErrForbidden, id.Role, op)
	}
	return nil
}
