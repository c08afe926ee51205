package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domaincontact "github.com/MustafaBasol/crm-sub007/internal/domain/contact"
	"github.com/MustafaBasol/crm-sub007/internal/domain/party"
	contactsvc "github.com/MustafaBasol/crm-sub007/internal/service/contact"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

func Register(rg *gin.RouterGroup, svc *contactsvc.Service) {
	rg.GET("", listContacts(svc))
	rg.POST("", createContact(svc))
	rg.PATCH("/:id", updateContact(svc))
	rg.DELETE("/:id", deleteContact(svc))
}

func listContacts(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := httpx.QueryID(c, "accountId")
		if !ok {
			return
		}

		contacts, err := svc.List(c.Request.Context(), httpx.MustActor(c), accountID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, contacts)
	}
}

type createContactReq struct {
	Name      string     `json:"name" binding:"required"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Company   *string    `json:"company"`
	AccountID *uuid.UUID `json:"account_id"`
}

func createContact(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createContactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ct, err := svc.Create(c.Request.Context(), httpx.MustActor(c), domaincontact.CreateInput{
			Name:      req.Name,
			Details:   party.Details{Email: req.Email, Phone: req.Phone, Company: req.Company},
			AccountID: req.AccountID,
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, ct)
	}
}

type updateContactReq struct {
	Name      *string                   `json:"name"`
	Email     httpx.Optional[string]    `json:"email"`
	Phone     httpx.Optional[string]    `json:"phone"`
	Company   httpx.Optional[string]    `json:"company"`
	AccountID httpx.Optional[uuid.UUID] `json:"account_id"`
}

func updateContact(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}
		var req updateContactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ct, err := svc.Update(c.Request.Context(), httpx.MustActor(c), id, domaincontact.UpdateInput{
			Name: req.Name,
			Details: party.Patch{
				Email:   httpx.PatchText(req.Email),
				Phone:   httpx.PatchText(req.Phone),
				Company: httpx.PatchText(req.Company),
			},
			AccountID:    req.AccountID.Value,
			ClearAccount: req.AccountID.Cleared(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, ct)
	}
}

func deleteContact(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParamID(c, "id")
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), httpx.MustActor(c), id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
