package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/qrcode"
	"github.com/cashclear/cashclear-pro/internal/recipients"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// VoucherHandler issues, verifies and redeems vouchers.
type VoucherHandler struct {
	ledger *ledger.Service
}

// NewVoucherHandler constructs a VoucherHandler.
func NewVoucherHandler(ledgerSvc *ledger.Service) *VoucherHandler {
	return &VoucherHandler{ledger: ledgerSvc}
}

// issueRequest defines the request body for single issuance.
type issueRequest struct {
	Recipient    string          `json:"recipient"`
	Amount       decimal.Decimal `json:"amount"`
	Location     string          `json:"location"`
	ValidityDays int             `json:"validity_days"`
}

// Issue debits the operator and sends one voucher.
func (h *VoucherHandler) Issue(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var body issueRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	validity, okValidity := validityFromDays(body.ValidityDays)
	if !okValidity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid validity_days"})
		return
	}

	voucher, errIssue := h.ledger.IssueVoucher(c.Request.Context(), ledger.IssueRequest{
		OperatorID: s.OperatorID,
		Recipient:  body.Recipient,
		Amount:     body.Amount,
		Location:   issueLocation(s, body.Location),
		Validity:   validity,
	})
	if errIssue != nil {
		cchttp.WriteError(c, errIssue)
		return
	}
	c.JSON(http.StatusCreated, cchttp.VoucherView(voucher, h.ledger.Now()))
}

// batchRequest defines the JSON body for batch issuance.
type batchRequest struct {
	Recipients   []string        `json:"recipients"`
	Amount       decimal.Decimal `json:"amount"`
	Location     string          `json:"location"`
	ValidityDays int             `json:"validity_days"`
}

// Batch issues one voucher per recipient from a JSON list or an uploaded CSV/XLSX file.
// With ?format=csv the results are returned as a CSV download.
func (h *VoucherHandler) Batch(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	req, errReq := readBatchRequest(c)
	if errReq != nil {
		if status, _, _ := cchttp.ErrorStatus(errReq); status != http.StatusInternalServerError {
			cchttp.WriteError(c, errReq)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errReq.Error()})
		return
	}
	validity, okValidity := validityFromDays(req.ValidityDays)
	if !okValidity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid validity_days"})
		return
	}
	if len(req.Recipients) == 0 {
		cchttp.WriteError(c, recipients.ErrNoRecipients)
		return
	}
	if len(req.Recipients) > recipients.MaxRecipients {
		cchttp.WriteError(c, recipients.ErrTooManyRecipients)
		return
	}

	summary := ledger.Collect(h.ledger.IssueBatch(c.Request.Context(), ledger.BatchRequest{
		OperatorID: s.OperatorID,
		Recipients: req.Recipients,
		Amount:     req.Amount,
		Location:   issueLocation(s, req.Location),
		Validity:   validity,
	}))
	log.WithFields(log.Fields{
		"operator": s.OperatorID,
		"issued":   summary.Issued,
		"failed":   summary.Failed,
	}).Info("batch issuance finished")

	if strings.EqualFold(c.Query("format"), "csv") {
		writeBatchCSV(c, summary)
		return
	}

	results := make([]gin.H, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		item := gin.H{"recipient": outcome.Recipient}
		if outcome.OK() {
			item["code"] = outcome.Voucher.Code
			item["status"] = "issued"
		} else {
			_, code, message := cchttp.ErrorStatus(outcome.Err)
			item["status"] = "failed"
			item["error"] = message
			item["error_code"] = code
		}
		results = append(results, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"issued":  summary.Issued,
		"failed":  summary.Failed,
		"total":   summary.Total.StringFixed(2),
		"results": results,
	})
}

func readBatchRequest(c *gin.Context) (batchRequest, error) {
	var req batchRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, errFile := c.FormFile("file")
		if errFile != nil {
			return req, fmt.Errorf("missing file")
		}
		file, errOpen := header.Open()
		if errOpen != nil {
			return req, fmt.Errorf("read file failed")
		}
		defer func() { _ = file.Close() }()
		list, errParse := recipients.Parse(header.Filename, file)
		if errParse != nil {
			return req, errParse
		}
		amount, errAmount := decimal.NewFromString(strings.TrimSpace(c.PostForm("amount")))
		if errAmount != nil {
			return req, ledger.ErrInvalidAmount
		}
		req.Recipients = list
		req.Amount = amount
		req.Location = c.PostForm("location")
		if days := strings.TrimSpace(c.PostForm("validity_days")); days != "" {
			if _, errScan := fmt.Sscanf(days, "%d", &req.ValidityDays); errScan != nil {
				return req, fmt.Errorf("invalid validity_days")
			}
		}
		return req, nil
	}
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		return req, fmt.Errorf("invalid json")
	}
	return req, nil
}

func writeBatchCSV(c *gin.Context, summary ledger.BatchSummary) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=batch_output_%s.csv", time.Now().UTC().Format("20060102T150405")))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"recipient", "code", "amount", "status", "error"})
	for _, outcome := range summary.Outcomes {
		if outcome.OK() {
			_ = w.Write([]string{outcome.Recipient, outcome.Voucher.Code, ledger.CentsToAmount(outcome.Voucher.AmountCents).StringFixed(2), "issued", ""})
			continue
		}
		_, _, message := cchttp.ErrorStatus(outcome.Err)
		_ = w.Write([]string{outcome.Recipient, "", "", "failed", message})
	}
	w.Flush()
	if errFlush := w.Error(); errFlush != nil {
		log.WithError(errFlush).Warn("write batch csv failed")
	}
}

// redeemRequest defines the request body for redemption.
type redeemRequest struct {
	Code string `json:"code"`
}

// Redeem consumes a voucher and returns its face value.
func (h *VoucherHandler) Redeem(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	var body redeemRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	voucher, errRedeem := h.ledger.RedeemVoucher(c.Request.Context(), body.Code, time.Time{}, s.OperatorID)
	if errRedeem != nil {
		cchttp.WriteError(c, errRedeem)
		return
	}
	c.JSON(http.StatusOK, cchttp.VoucherView(voucher, h.ledger.Now()))
}

// Get returns a voucher for verification.
func (h *VoucherHandler) Get(c *gin.Context) {
	voucher, errGet := h.ledger.GetVoucher(c.Request.Context(), c.Param("code"))
	if errGet != nil {
		cchttp.WriteError(c, errGet)
		return
	}
	c.JSON(http.StatusOK, cchttp.VoucherView(voucher, h.ledger.Now()))
}

// QRCode renders the voucher code as a PNG.
func (h *VoucherHandler) QRCode(c *gin.Context) {
	voucher, errGet := h.ledger.GetVoucher(c.Request.Context(), c.Param("code"))
	if errGet != nil {
		cchttp.WriteError(c, errGet)
		return
	}
	size := queryInt(c, "size", qrcode.DefaultSize)
	if size < 64 || size > 1024 {
		size = qrcode.DefaultSize
	}
	png, errPNG := qrcode.PNG(voucher.Code, size)
	if errPNG != nil {
		cchttp.WriteError(c, errPNG)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// issueLocation lets administrators override the issuing location; operators always
// issue at their assigned location.
func issueLocation(s *session.Session, requested string) string {
	if s.CanAdminister() {
		return strings.TrimSpace(requested)
	}
	return ""
}
