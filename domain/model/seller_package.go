package model

// SellerPackage links a seller to a subscription package.
type SellerPackage struct {
	UserID          int64 `json:"user_id"`
	SellerPackageID int   `json:"seller_package_id"`
}

// PlanPermissions is what a package unlocks in the dashboard.
type PlanPermissions struct {
	HasAccess      bool   `json:"has_access"`
	MaxPostingDays int    `json:"max_posting_days"`
	PlanName       string `json:"plan_name"`
}

// PermissionsFor maps a package id to its permissions.
func PermissionsFor(packageID int) PlanPermissions {
	switch packageID {
	case 4:
		return PlanPermissions{HasAccess: false, MaxPostingDays: 0, PlanName: "Restricted Plan"}
	case 7:
		return PlanPermissions{HasAccess: true, MaxPostingDays: 3, PlanName: "Starter Plan"}
	case 8, 9:
		return PlanPermissions{HasAccess: true, MaxPostingDays: 7, PlanName: "Advanced Plan"}
	default:
		return PlanPermissions{HasAccess: false, MaxPostingDays: 0, PlanName: "Unknown Plan"}
	}
}
