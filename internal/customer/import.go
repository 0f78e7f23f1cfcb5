package customer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/sheet"
)

type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	CreatedCount int      `json:"created_count"`
	UpdatedCount int      `json:"updated_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}

var (
	nameColumns    = []string{"nome", "name", "cliente"}
	phoneColumns   = []string{"telefone", "phone", "celular", "whatsapp"}
	emailColumns   = []string{"email", "e-mail"}
	addressColumns = []string{"endereço", "endereco", "address"}
)

// importRow is a spreadsheet line; line is its 1-based row number in the file
type importRow struct {
	line int
	form Form
}

func readRows(t *sheet.Table) []importRow {
	rows := make([]importRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		rows = append(rows, importRow{
			line: i + 2,
			form: Form{
				Name:    t.Value(row, nameColumns...),
				Phone:   t.Value(row, phoneColumns...),
				Email:   t.Value(row, emailColumns...),
				Address: t.Value(row, addressColumns...),
			},
		})
	}
	return rows
}

// Import creates customers from an xlsx or csv upload. A row whose phone
// matches an existing customer updates that customer instead.
func (h *Handler) Import(c *gin.Context) {
	s := session.Current(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	table, err := sheet.Read(file, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse file: %v", err)})
		return
	}

	rows := readRows(table)
	result := ImportResult{TotalRows: len(rows), Errors: []string{}}
	fail := func(line int, msg string) {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", line, msg))
		result.FailedCount++
	}

	for _, row := range rows {
		var customer database.Customer
		row.form.apply(&customer)
		customer.AccountID = s.AccountID
		if err := validate(customer); err != nil {
			fail(row.line, fmt.Sprintf("missing %v", draft.MissingFields(err)))
			continue
		}

		var existing database.Customer
		if err := h.db.Where("account_id = ? AND phone = ?", s.AccountID, customer.Phone).First(&existing).Error; err == nil {
			before := logValues(existing)
			row.form.apply(&existing)
			if err := h.db.Save(&existing).Error; err != nil {
				fail(row.line, fmt.Sprintf("failed to update %s - %v", customer.Name, err))
				continue
			}
			h.logger.LogUpdate(c, "customer", existing.ID, before, logValues(existing))
			result.UpdatedCount++
			continue
		}

		if err := h.db.Create(&customer).Error; err != nil {
			fail(row.line, fmt.Sprintf("failed to create %s - %v", customer.Name, err))
			continue
		}
		h.logger.LogCreate(c, "customer", customer.ID, logValues(customer))
		result.CreatedCount++
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"message": fmt.Sprintf("Import completed: %d created, %d updated, %d failed", result.CreatedCount, result.UpdatedCount, result.FailedCount),
	})
}

// DownloadTemplate returns a sample sheet with the columns Import understands
func (h *Handler) DownloadTemplate(c *gin.Context) {
	f, err := sheet.Build(exportHeaders[:4], [][]interface{}{
		{"Maria Silva", "(11) 99999-0000", "maria@exemplo.com", "Rua das Flores, 10"},
		{"Joana Souza", "(21) 98888-1111", "", ""},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate template"})
		return
	}
	sheet.Send(c, f, "modelo_importacao_clientes.xlsx")
}
