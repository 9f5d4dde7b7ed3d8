package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"toursite/internal/pdf"
	"toursite/internal/services"
)

type SubscriberAdminHandler struct {
	Service  *services.SubscriberService
	Exporter *pdf.SubscriberExporter
}

func NewSubscriberAdminHandler(service *services.SubscriberService, exporter *pdf.SubscriberExporter) *SubscriberAdminHandler {
	return &SubscriberAdminHandler{Service: service, Exporter: exporter}
}

// @Summary      List subscribers
// @Tags         Admin
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /admin/subscribers [get]
func (h *SubscriberAdminHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	subs, total, err := h.Service.List(limit, offset)
	if err != nil {
		log.Printf("[admin][subscribers] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list subscribers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subscribers": subs,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// @Summary      Delete subscriber
// @Tags         Admin
// @Produce      json
// @Param        id   path      int  true  "Subscriber ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/subscribers/{id} [delete]
func (h *SubscriberAdminHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscriber id"})
		return
	}
	if err := h.Service.Delete(id); err != nil {
		if err == services.ErrSubscriberNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscriber not found"})
			return
		}
		log.Printf("[admin][subscribers] delete failed: id=%d err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscriber"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscriber deleted"})
}

// @Summary      Export subscribers
// @Description  format=csv (default) or format=pdf
// @Tags         Admin
// @Produce      text/csv
// @Param        format  query  string  false  "csv or pdf"
// @Success      200
// @Security     BearerAuth
// @Router       /admin/subscribers/export [get]
func (h *SubscriberAdminHandler) Export(c *gin.Context) {
	subs, err := h.Service.Export()
	if err != nil {
		log.Printf("[admin][subscribers] export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export subscribers"})
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		data, err := h.Exporter.Generate(subs, time.Now())
		if err != nil {
			log.Printf("[admin][subscribers] pdf export failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export subscribers"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="subscribers.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="subscribers.csv"`)
		c.Header("Content-Type", "text/csv")
		w := csv.NewWriter(c.Writer)
		_ = w.Write([]string{"id", "email", "subscribed_at"})
		for _, s := range subs {
			_ = w.Write([]string{
				strconv.FormatInt(s.ID, 10),
				s.Email,
				s.SubscribedAt.Format(time.RFC3339),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Printf("[admin][subscribers] csv export failed: %v", err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown export format %q", c.Query("format"))})
	}
}
