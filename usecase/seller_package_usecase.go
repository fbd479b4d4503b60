package usecase

import (
	"context"
	"fmt"
	"strconv"

	"social-connect/domain/model"
	"social-connect/domain/repository"
	"social-connect/infrastructure/logger"
)

type ISellerPackageUsecase interface {
	// GetPermissions returns a nil package and no-access permissions when the seller has none.
	GetPermissions(ctx context.Context, userID string) (*model.SellerPackage, model.PlanPermissions, error)
}

type sellerPackageUsecase struct {
	repo repository.ISellerPackage
}

func NewSellerPackageUsecase(repo repository.ISellerPackage) ISellerPackageUsecase {
	return &sellerPackageUsecase{repo: repo}
}

func (u *sellerPackageUsecase) GetPermissions(ctx context.Context, userID string) (*model.SellerPackage, model.PlanPermissions, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, model.PlanPermissions{}, fmt.Errorf("%w: user id %q is not numeric", model.ErrMissingCredentials, userID)
	}
	// a failed lookup counts as no package
	pkg, err := u.repo.GetSellerPackage(ctx, id)
	if err != nil {
		logger.GetLogger().WithField("user_id", id).WithField("error", err.Error()).Warn("Failed to fetch seller package")
		return nil, model.PermissionsFor(0), nil
	}
	if pkg == nil {
		return nil, model.PermissionsFor(0), nil
	}
	return pkg, model.PermissionsFor(pkg.SellerPackageID), nil
}
