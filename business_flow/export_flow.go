package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/xuri/excelize/v2"
)

// ExportFlow produces downloadable reports: per-link click logs as CSV and the full
// link inventory as an Excel workbook with one sheet per target domain
type ExportFlow interface {
	DownloadClicksCSV(ctx context.Context, key string) (string, []byte, error)
	DownloadShortLinksExcel(ctx context.Context, filter models.ShortLinkFilter) (string, []byte, error)
}

type ExportFlowImpl struct {
	shortRepo repository.ShortLinkRepository
	clickRepo repository.ClickEventRepository
}

func NewExportFlow(shortRepo repository.ShortLinkRepository, clickRepo repository.ClickEventRepository) ExportFlow {
	return &ExportFlowImpl{shortRepo: shortRepo, clickRepo: clickRepo}
}

func (f *ExportFlowImpl) DownloadClicksCSV(ctx context.Context, key string) (string, []byte, error) {
	row, err := f.shortRepo.ByLookupKey(ctx, key)
	if err != nil {
		return "", nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if row == nil {
		return "", nil, ErrLinkNotFound
	}

	clicks, err := f.clickRepo.ListByLink(ctx, row.ID, "created_at ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_CLICKS_FAILED", "Failed to fetch click events", err)
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	alreadyFlushed := false
	defer func() {
		if !alreadyFlushed {
			w.Flush()
			alreadyFlushed = true
		}
	}()

	header := []string{
		"clicked_at",
		"ip_address",
		"device_type",
		"browser",
		"os",
		"country",
		"city",
		"referer",
		"user_agent",
	}
	if err := w.Write(header); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}

	for _, c := range clicks {
		referer := ""
		if c.Referer != nil {
			referer = *c.Referer
		}
		ua := ""
		if c.UserAgent != nil {
			ua = *c.UserAgent
		}

		record := []string{
			c.CreatedAt.UTC().Format(time.RFC3339),
			c.IPAddress,
			string(c.DeviceType),
			c.Browser,
			c.OS,
			c.Country,
			c.City,
			referer,
			ua,
		}
		if err := w.Write(record); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}

	filename := fmt.Sprintf("clicks_%s.csv", row.LookupKey())
	if !alreadyFlushed {
		w.Flush()
		alreadyFlushed = true
	}
	return filename, buf.Bytes(), nil
}

func (f *ExportFlowImpl) DownloadShortLinksExcel(ctx context.Context, filter models.ShortLinkFilter) (string, []byte, error) {
	rows, err := f.shortRepo.ByFilter(ctx, filter, "domain ASC, id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("FETCH_SHORT_LINKS_FAILED", "Failed to fetch short links", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	// Group links by target domain, one sheet per domain
	byDomain := make(map[string][]*models.ShortLink)
	order := make([]string, 0)
	for _, r := range rows {
		domain := r.Domain
		if strings.TrimSpace(domain) == "" {
			domain = "unknown"
		}
		if _, ok := byDomain[domain]; !ok {
			order = append(order, domain)
		}
		byDomain[domain] = append(byDomain[domain], r)
	}

	if len(order) == 0 {
		order = append(order, "short_links")
	}

	usedNames := map[string]bool{}
	for i, domain := range order {
		baseName := sanitizeSheetName(domain)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		if i == 0 {
			// Rename default sheet
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		header := []string{"code", "custom_alias", "original_url", "domain", "click_count", "is_active", "expires_at", "created_at"}
		_ = xl.SetSheetRow(name, "A1", &header)

		for ri, r := range byDomain[domain] {
			alias := ""
			if r.CustomAlias != nil {
				alias = *r.CustomAlias
			}
			expires := ""
			if r.ExpiresAt != nil {
				expires = r.ExpiresAt.UTC().Format(time.RFC3339)
			}

			record := []string{
				r.Code,
				alias,
				r.OriginalURL,
				r.Domain,
				strconv.FormatUint(r.ClickCount, 10),
				strconv.FormatBool(r.IsActive),
				expires,
				r.CreatedAt.UTC().Format(time.RFC3339),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return "short_links_by_domain.xlsx", buf.Bytes(), nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "sheet"
	}
	return name
}
