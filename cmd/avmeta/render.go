package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/avmeta/internal/domain"
)

// stdout 非 TTY 时只输出一个 JSON 值（日志/进度走 stderr）。
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	return tw
}

func renderCandidates(w io.Writer, tty bool, cands []domain.SearchCandidate) error {
	if cands == nil {
		cands = []domain.SearchCandidate{}
	}
	if !tty {
		return writeJSON(w, cands)
	}
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, "没有找到候选。")
		return err
	}

	scored := hasScore(cands)
	tw := newTable(w)
	header := table.Row{"#", "Label", "ID"}
	if scored {
		header = table.Row{"#", "Score", "Label", "ID"}
	}
	tw.AppendHeader(header)
	for i, c := range cands {
		if scored {
			score := "-"
			if c.Score != nil {
				score = strconv.Itoa(*c.Score)
			}
			tw.AppendRow(table.Row{i + 1, score, truncate(c.Label, 60), c.ID})
			continue
		}
		tw.AppendRow(table.Row{i + 1, truncate(c.Label, 60), c.ID})
	}
	if scored {
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	}
	tw.Render()
	return nil
}

func renderRecord(w io.Writer, tty bool, rec domain.MetadataRecord) error {
	if !tty {
		return writeJSON(w, rec)
	}
	date := ""
	if rec.PremiereDate != nil {
		date = rec.PremiereDate.Format("2006-01-02")
	}
	cast := make([]string, 0, len(rec.Cast))
	for _, p := range rec.Cast {
		cast = append(cast, p.Name)
	}
	length := ""
	if rec.RuntimeMinutes > 0 {
		length = strconv.Itoa(rec.RuntimeMinutes) + " min"
	}

	tw := newTable(w)
	tw.AppendRows([]table.Row{
		{"Code", rec.OriginalTitle},
		{"Title", rec.Title},
		{"Studio", rec.Studio},
		{"Label", rec.Label},
		{"Director", rec.Director},
		{"Date", date},
		{"Runtime", length},
		{"Genres", strings.Join(rec.Genres, ", ")},
		{"Cast", strings.Join(cast, ", ")},
		{"URL", rec.ExternalID},
	})
	tw.Render()
	return nil
}

func renderImages(w io.Writer, tty bool, imgs []domain.ImageRecord) error {
	if imgs == nil {
		imgs = []domain.ImageRecord{}
	}
	if !tty {
		return writeJSON(w, imgs)
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Kind", "URL"})
	for _, img := range imgs {
		tw.AppendRow(table.Row{img.Kind.String(), img.URL})
	}
	tw.Render()
	return nil
}

func renderScanReport(w io.Writer, tty bool, rr domain.ScanReport) error {
	if !tty {
		return writeJSON(w, rr)
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Code", "Status", "Best / Error", "Files"})
	for _, it := range rr.Items {
		key := it.Code
		if key == "" && len(it.Files) > 0 {
			key = it.Files[0]
		}
		detail := it.ErrorCode
		if it.ErrorMsg != "" {
			detail += ": " + it.ErrorMsg
		}
		if it.Best != nil {
			detail = it.Best.Label
			if it.Best.Score != nil {
				detail = fmt.Sprintf("[%d] %s", *it.Best.Score, it.Best.Label)
			}
		}
		tw.AppendRow(table.Row{key, it.Status, truncate(detail, 70), len(it.Files)})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("matched=%d no_results=%d failed=%d unmatched=%d",
		rr.Summary.Matched, rr.Summary.NoResults, rr.Summary.Failed, rr.Summary.Unmatched), ""})
	tw.Render()
	return nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
