package leads

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

// maxAnalyticsLeads bounds how many leads one analytics request scans.
const maxAnalyticsLeads = 10000

// Analytics aggregates leads created inside a time window.
type Analytics struct {
	Since         time.Time                    `json:"since"`
	Until         time.Time                    `json:"until"`
	Total         int                          `json:"total"`
	ByStatus      map[qualification.Status]int `json:"by_status"`
	QualifiedRate float64                      `json:"qualified_rate"`
	Notified      int                          `json:"notified"`
	ByProjectType map[string]int               `json:"by_project_type"`
	ByCustomer    []CustomerAnalytics          `json:"by_customer"`
	Truncated     bool                         `json:"truncated,omitempty"`
}

// CustomerAnalytics is one customer's share of an Analytics window.
type CustomerAnalytics struct {
	CustomerID    string  `json:"customer_id"`
	Total         int     `json:"total"`
	Qualified     int     `json:"qualified"`
	Disqualified  int     `json:"disqualified"`
	InProgress    int     `json:"in_progress"`
	QualifiedRate float64 `json:"qualified_rate"`
}

// Summarize counts the leads whose CreatedAt falls in [since, until).
func Summarize(leads []*Lead, since, until time.Time) Analytics {
	out := Analytics{
		Since: since,
		Until: until,
		ByStatus: map[qualification.Status]int{
			qualification.StatusInProgress:   0,
			qualification.StatusQualified:    0,
			qualification.StatusDisqualified: 0,
		},
		ByProjectType: map[string]int{},
		ByCustomer:    []CustomerAnalytics{},
	}

	perCustomer := make(map[string]*CustomerAnalytics)
	for _, l := range leads {
		if l.CreatedAt.Before(since) || !l.CreatedAt.Before(until) {
			continue
		}
		out.Total++
		out.ByStatus[l.Status]++
		if l.QualifiedNotifiedAt != nil {
			out.Notified++
		}
		if l.ProjectType != "" {
			out.ByProjectType[l.ProjectType]++
		}

		c, ok := perCustomer[l.CustomerID]
		if !ok {
			c = &CustomerAnalytics{CustomerID: l.CustomerID}
			perCustomer[l.CustomerID] = c
		}
		c.Total++
		switch l.Status {
		case qualification.StatusQualified:
			c.Qualified++
		case qualification.StatusDisqualified:
			c.Disqualified++
		default:
			c.InProgress++
		}
	}

	out.QualifiedRate = rate(out.ByStatus[qualification.StatusQualified], out.Total)
	for _, c := range perCustomer {
		c.QualifiedRate = rate(c.Qualified, c.Total)
		out.ByCustomer = append(out.ByCustomer, *c)
	}
	sort.Slice(out.ByCustomer, func(i, j int) bool {
		return out.ByCustomer[i].CustomerID < out.ByCustomer[j].CustomerID
	})
	return out
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 10000
}

// collectLeads pages through repo until it is exhausted or the scan cap is
// reached. The bool reports whether the cap cut the scan short.
func collectLeads(ctx context.Context, repo Repository, customerID string) ([]*Lead, bool, error) {
	var all []*Lead
	for offset := 0; offset < maxAnalyticsLeads; offset += maxListLimit {
		page, err := repo.List(ctx, ListFilter{CustomerID: customerID, Limit: maxListLimit, Offset: offset})
		if err != nil {
			return nil, false, err
		}
		all = append(all, page...)
		if len(page) < maxListLimit {
			return all, false, nil
		}
	}
	return all, true, nil
}
