package http

import (
	"net/http"

	"social-connect/domain/model"
	"social-connect/usecase"

	"github.com/gin-gonic/gin"
)

type ISellerPackageHandler interface {
	Get(c *gin.Context)
}

type sellerPackageHandler struct {
	uc usecase.ISellerPackageUsecase
}

func NewSellerPackageHandler(uc usecase.ISellerPackageUsecase) ISellerPackageHandler {
	return &sellerPackageHandler{uc: uc}
}

func (h *sellerPackageHandler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_credentials"})
		return
	}
	pkg, perms, err := h.uc.GetPermissions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": model.Reason(err)})
		return
	}
	var packageID interface{}
	if pkg != nil {
		packageID = pkg.SellerPackageID
	}
	c.JSON(http.StatusOK, gin.H{
		"seller_package_id": packageID,
		"permissions":       perms,
	})
}
