package ytdlp

import (
	"encoding/json"
	"regexp"
	"strings"
)

const progressPrefix = "[downconv] "

// progressTemplate asks yt-dlp to print one JSON object per progress update.
const progressTemplate = "download:" + progressPrefix +
	`{"status":%(progress.status)j,` +
	`"downloaded_bytes":%(progress.downloaded_bytes)j,` +
	`"total_bytes":%(progress.total_bytes)j,` +
	`"total_bytes_estimate":%(progress.total_bytes_estimate)j,` +
	`"percent":%(progress._percent_str)j,` +
	`"speed":%(progress._speed_str)j,` +
	`"eta":%(progress._eta_str)j}`

// Progress is one decoded progress event.
type Progress struct {
	Status          string
	DownloadedBytes int64
	TotalBytes      int64
	PercentText     string
	SpeedText       string
	ETAText         string
}

type progressLine struct {
	Status             string   `json:"status"`
	DownloadedBytes    *float64 `json:"downloaded_bytes"`
	TotalBytes         *float64 `json:"total_bytes"`
	TotalBytesEstimate *float64 `json:"total_bytes_estimate"`
	Percent            string   `json:"percent"`
	Speed              string   `json:"speed"`
	ETA                string   `json:"eta"`
}

// yt-dlp renders missing fields as a bare NA even with the j conversion.
var bareNA = regexp.MustCompile(`:\s*NA\s*([,}])`)

// ParseProgress decodes a progress-template line. Other lines report false.
func ParseProgress(line string) (Progress, bool) {
	idx := strings.Index(line, progressPrefix)
	if idx < 0 {
		return Progress{}, false
	}
	payload := bareNA.ReplaceAllString(strings.TrimSpace(line[idx+len(progressPrefix):]), ":null$1")
	var raw progressLine
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Progress{}, false
	}
	p := Progress{
		Status:      raw.Status,
		PercentText: cleanField(raw.Percent),
		SpeedText:   cleanField(raw.Speed),
		ETAText:     cleanField(raw.ETA),
	}
	if raw.DownloadedBytes != nil {
		p.DownloadedBytes = int64(*raw.DownloadedBytes)
	}
	switch {
	case raw.TotalBytes != nil:
		p.TotalBytes = int64(*raw.TotalBytes)
	case raw.TotalBytesEstimate != nil:
		p.TotalBytes = int64(*raw.TotalBytesEstimate)
	}
	return p, true
}

func cleanField(value string) string {
	value = strings.TrimSpace(value)
	switch value {
	case "NA", "N/A", "Unknown", "Unknown B/s", "Unknown%":
		return ""
	}
	return value
}
