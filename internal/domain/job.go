package domain

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ParseJobStatus переводит статус API во внутренний.
// "faulted" у сервиса означает провал, всё незнакомое считаем pending.
func ParseJobStatus(s string) JobStatus {
	switch s {
	case "done":
		return JobDone
	case "faulted", "failed":
		return JobFailed
	default:
		return JobPending
	}
}

func (s JobStatus) IsTerminal() bool {
	return s == JobDone || s == JobFailed
}

type Job struct {
	ID          string
	SubmittedAt time.Time
	Status      JobStatus
}

// Result - ответ сервиса. Одинаковый для realtime и async.
type Result struct {
	Results []ResultItem `json:"results"`
	Job     *JobInfo     `json:"job,omitempty"`
}

type ResultItem struct {
	Content    json.RawMessage `json:"content"`
	Page       int             `json:"page,omitempty"`
	URL        string          `json:"url,omitempty"`
	JobID      string          `json:"job_id,omitempty"`
	StatusCode int             `json:"status_code,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
	ParserType string          `json:"parser_type,omitempty"`
}

// Clone - глубокая копия, чтобы закешированный результат нельзя было испортить снаружи
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{}
	if r.Results != nil {
		out.Results = make([]ResultItem, len(r.Results))
		for i, item := range r.Results {
			if item.Content != nil {
				item.Content = append(json.RawMessage(nil), item.Content...)
			}
			out.Results[i] = item
		}
	}
	if r.Job != nil {
		job := *r.Job
		out.Job = &job
	}
	return out
}

// JobInfo - метаданные задачи, которые сервис кладёт рядом с результатом
type JobInfo struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Source    string `json:"source,omitempty"`
	Query     string `json:"query,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// JobRecord - запись истории запросов
type JobRecord struct {
	ID          string
	JobID       string
	Source      string
	Target      string
	Mode        Mode
	Status      JobStatus
	Error       string
	SubmittedAt time.Time
	FinishedAt  *time.Time
}
