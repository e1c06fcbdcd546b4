package handler

import (
	"net/http"
	"strconv"
)

const defaultJournalLimit = 50

// GetSalesReport возвращает сводку выручки за неделю, месяц, год и дневной ряд.
func (h *Handler) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SalesReport(r.Context())
	if err != nil {
		h.writeError(w, "sales report", err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(summary))
}

// GetJournal возвращает последние записи журнала оформлений.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.service.ListCheckouts(r.Context(), limit)
	if err != nil {
		h.writeError(w, "list journal", err)
		return
	}

	resp := make([]journalResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, newJournalResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}
