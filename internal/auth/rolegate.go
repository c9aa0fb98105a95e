package auth

import "github.com/engineermuzamil/modernstore/internal/domain"

// RequireCustomer gates cart and order operations. An admin identity fails
// here before any cart or stock state is read.
func RequireCustomer(id domain.Identity) error {
	if id.Role != domain.RoleCustomer {
		return domain.ErrCustomerOnly
	}
	return nil
}

// RequireAdmin gates catalog-management mutations.
func RequireAdmin(id domain.Identity) error {
	if id.Role != domain.RoleAdmin {
		return domain.ErrAdminOnly
	}
	return nil
}
