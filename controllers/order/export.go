package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/permissions"
)

// GET /admin/orders/export-excel
func ExportOrdersToExcelHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := permissions.Authorize(permissions.ActionExportOrders, user); err != nil {
			apperr.Respond(c, err)
			return
		}

		var orders []models.Order
		if err := db.Preload("Customer").Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			apperr.Respond(c, apperr.Transient("Failed to fetch orders", err))
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			apperr.Respond(c, apperr.Transient("Failed to create Excel sheet", err))
			return
		}

		headers := []string{
			"OrderNumber", "Customer", "Status", "TotalAmount", "ShippingFee",
			"Items", "Address", "Phone", "TrackingNumber", "PaymentAt", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.OrderNumber)
			if o.Customer != nil {
				row.AddCell().SetValue(o.Customer.Email)
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.TotalAmount)
			row.AddCell().SetValue(o.ShippingFee)
			row.AddCell().SetValue(strconv.Itoa(len(o.Items)))
			row.AddCell().SetValue(o.Address)
			row.AddCell().SetValue(o.Phone)
			row.AddCell().SetValue(o.TrackingNumber)
			if o.PaymentAt != nil {
				row.AddCell().SetValue(o.PaymentAt.Format("2006-01-02 15:04:05"))
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			apperr.Respond(c, apperr.Transient("Failed to write Excel file", err))
			return
		}
	}
}
