package productcontroller

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/services"
	"github.com/tealeg/xlsx"
)

var productSheetHeaders = []string{
	"ID", "Title", "Description", "Price", "Discount", "Total",
	"Image", "Image2", "Category", "CreatedAt", "UpdatedAt",
}

// buildProductsWorkbook lays products out one per row under a header row.
func buildProductsWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range productSheetHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Discount)
		row.AddCell().SetValue(p.Total)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.Image2)

		category := ""
		if p.Category != nil {
			category = *p.Category
		}
		row.AddCell().SetValue(category)

		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}

// GET /products/export-excel
func ExportProductsToExcel(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}

		file, err := buildProductsWorkbook(products)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
			return
		}
	}
}
