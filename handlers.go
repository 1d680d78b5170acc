package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sbmetals/leadtrack_backend/config"
	"github.com/sbmetals/leadtrack_backend/models"
	"github.com/sbmetals/leadtrack_backend/models/reports"
	"github.com/sbmetals/leadtrack_backend/utils"
	"go.opentelemetry.io/otel/trace"
)

var validate = validator.New()

func bindAndValidate(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindAndValidate(c, &input) {
			return
		}
		user, err := models.RegisterUser(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LoginInput
		if !bindAndValidate(c, &input) {
			return
		}
		info, err := models.LoginUser(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func createRmlPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRmlPurchaseEntry
		if !bindAndValidate(c, &input) {
			return
		}
		entry, err := models.CreateRmlPurchaseEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listRmlPurchasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetRmlPurchaseEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func createRefiningEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRefiningEntry
		if !bindAndValidate(c, &input) {
			return
		}
		entry, err := models.CreateRefiningEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listRefiningEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetRefiningEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func createRecyclingEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRecyclingEntry
		if !bindAndValidate(c, &input) {
			return
		}
		entry, err := models.CreateRecyclingEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listRecyclingEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetRecyclingEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func createDrossRecyclingEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewDrossRecyclingEntry
		if !bindAndValidate(c, &input) {
			return
		}
		entry, err := models.CreateDrossRecyclingEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func listDrossRecyclingEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.GetDrossRecyclingEntries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func createSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSale
		if !bindAndValidate(c, &input) {
			return
		}
		sale, err := models.CreateSale(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func listSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sales, err := models.GetSales(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, sales)
	}
}

func summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "stock-summary", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		summary, err := models.GetSummary(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func availableSkusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		skus, err := models.GetAvailableSkus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if skus == nil {
			skus = []*models.AvailableSku{}
		}
		c.JSON(http.StatusOK, skus)
	}
}

func exportEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		entries, err := models.GetRefiningEntries(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		summary, err := models.GetSummary(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		f, err := reports.BuildEntriesWorkbook(entries, summary)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=refining_entries.xlsx")
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "handlers", "exportEntriesHandler", "write workbook", nil, err)
		}
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func deleteByIdHandler(del func(c *gin.Context, id int) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := del(c, id); err != nil {
			if err == utils.ErrorRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func getRecoverySettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.GetRecoverySettings(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func updateRecoverySettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.UpdateRecoverySettings
		if !bindAndValidate(c, &input) {
			return
		}
		settings, err := models.SaveRecoverySettings(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}
