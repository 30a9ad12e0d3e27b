package handlers

import (
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"hikvision-integration/config/middleware"
	"hikvision-integration/models"
	"hikvision-integration/repository"
)

// FileHandler serves the files kept in a company's data directory.
type FileHandler struct {
	root      string
	companies CompanyLookup
}

func NewFileHandler(root string, companies CompanyLookup) *FileHandler {
	return &FileHandler{root: root, companies: companies}
}

// GetDataFile godoc
// @Summary Download a data file
// @Description Streams one file (events.json, users.json, workbooks) from the company's data directory.
// @Tags Files
// @Produce octet-stream
// @Security BearerAuth
// @Param company path string true "Company ID"
// @Param file path string true "File name"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.UnauthorizedErrorResponse
// @Failure 403 {object} models.ForbiddenErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /data/{company}/{file} [get]
func (h *FileHandler) GetDataFile(c *fiber.Ctx) error {
	name := c.Params("file")
	if !safeFileName(name) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid file name"})
	}

	company, _, status, err := resolveCompany(h.companies, nil, c.Params("company"), middleware.ClaimsFrom(c))
	if err != nil {
		return c.Status(status).JSON(models.ErrorResponse{Error: err.Error()})
	}

	path := filepath.Join(repository.CompanyDir(h.root, company), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "file not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to read file", Details: err.Error()})
	}

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.SendFile(path)
}

// safeFileName accepts a single path element with no traversal.
func safeFileName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
