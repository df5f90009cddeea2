package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/CuasDev/fel/internal/apierror"
	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) Report(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportReport streams the report as an Excel workbook.
func (h *InvoicesHandler) ExportReport(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	data, err := h.svc.ExportReport(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	name := "reporte_facturas_" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// Preview computes totals for a draft without storing anything.
func (h *InvoicesHandler) Preview(c *gin.Context) {
	var req dto.PreviewInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Preview(req))
}

func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) PDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	data, name, err := h.svc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Data(http.StatusOK, contentTypePDF, data)
}

// Send queues the invoice for e-mail delivery. The body is optional.
func (h *InvoicesHandler) Send(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return
	}
	to, err := h.svc.Send(c.Request.Context(), id, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Factura en cola para envío a " + to})
}

func (h *InvoicesHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.InvoiceStatusResponse{Message: "Estado actualizado exitosamente", Invoice: *resp})
}

func (h *InvoicesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Factura eliminada exitosamente"})
}
