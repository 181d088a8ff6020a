package dto

import "github.com/yukikurage/taskz/internal/models"

// TenantDTO represents a tenant in API responses
type TenantDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToTenantDTO converts a Tenant model to TenantDTO
func ToTenantDTO(tenant models.Tenant) TenantDTO {
	return TenantDTO{ID: tenant.ID, Name: tenant.Name}
}

// ToTenantDTOs converts a slice of tenants
func ToTenantDTOs(tenants []models.Tenant) []TenantDTO {
	items := make([]TenantDTO, len(tenants))
	for i, tenant := range tenants {
		items[i] = ToTenantDTO(tenant)
	}
	return items
}
