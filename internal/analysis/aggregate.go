package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Dimension names one aggregation axis.
type Dimension string

const (
	DimDestination Dimension = "destinacao"
	DimState       Dimension = "estado"
	DimSize        Dimension = "tamanho"
)

// Summary table column headers.
const (
	ColSizeBucket = "Categoria de Tamanho"
	ColWorksCount = "Número de Obras"
	ColCNOCount   = "Número de CNO"
	ColPercentage = "Percentual"
)

// SummaryRow is one category of a Summary.
type SummaryRow struct {
	Label   string
	Count   int
	Percent float64
}

// Summary is a count and percentage-of-total per category.
type Summary struct {
	Dimension   Dimension
	LabelColumn string
	CountColumn string
	Rows        []SummaryRow
	Total       int
}

// MaxCount is the largest row count, or 0 for an empty summary.
func (s Summary) MaxCount() int {
	m := 0
	for _, r := range s.Rows {
		if r.Count > m {
			m = r.Count
		}
	}
	return m
}

// SizeBucket is a right-closed area range in m².
type SizeBucket struct {
	Label string
	Lower float64 // exclusive, except for the first bucket
	Upper float64 // inclusive
}

// SizeBuckets in ascending order.
var SizeBuckets = []SizeBucket{
	{Label: "Até 500 m²", Lower: 0, Upper: 500},
	{Label: "Até 1.000 m²", Lower: 500, Upper: 1000},
	{Label: "1.001-5.000 m²", Lower: 1000, Upper: 5000},
	{Label: "5.001-10.000 m²", Lower: 5000, Upper: 10000},
	{Label: "10.001-50.000 m²", Lower: 10000, Upper: 50000},
	{Label: "Acima de 50.000 m²", Lower: 50000, Upper: math.Inf(1)},
}

// SizeBucketOf returns the index into SizeBuckets for area, or -1 when the
// area is missing, negative or not finite.
func SizeBucketOf(area *float64) int {
	if area == nil || math.IsNaN(*area) || math.IsInf(*area, 0) || *area < 0 {
		return -1
	}
	for i, b := range SizeBuckets {
		if *area <= b.Upper {
			return i
		}
	}
	return -1
}

// ByDestination counts records per Destinação, largest first.
func ByDestination(ds *Dataset) Summary {
	counts := map[string]int{}
	for _, r := range ds.Records {
		if r.Destination != nil {
			counts[*r.Destination]++
		}
	}
	return byCount(DimDestination, ColDestination, ColWorksCount, counts)
}

// ByState counts records per Estado, largest first. Records without a
// state are left out of both the groups and the total.
func ByState(ds *Dataset) Summary {
	counts := map[string]int{}
	for _, r := range ds.Records {
		if r.State != nil {
			counts[*r.State]++
		}
	}
	return byCount(DimState, ColState, ColCNOCount, counts)
}

// BySize counts records per SizeBucket in bucket order. Empty buckets and
// records without a bucket are omitted.
func BySize(ds *Dataset) Summary {
	counts := make([]int, len(SizeBuckets))
	for _, r := range ds.Records {
		if i := SizeBucketOf(r.Area); i >= 0 {
			counts[i]++
		}
	}
	s := Summary{Dimension: DimSize, LabelColumn: ColSizeBucket, CountColumn: ColWorksCount}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		s.Rows = append(s.Rows, SummaryRow{Label: SizeBuckets[i].Label, Count: n})
		s.Total += n
	}
	fillPercentages(&s)
	return s
}

func byCount(dim Dimension, labelCol, countCol string, counts map[string]int) Summary {
	s := Summary{Dimension: dim, LabelColumn: labelCol, CountColumn: countCol}
	for label, n := range counts {
		s.Rows = append(s.Rows, SummaryRow{Label: label, Count: n})
		s.Total += n
	}
	sort.Slice(s.Rows, func(i, j int) bool {
		if s.Rows[i].Count == s.Rows[j].Count {
			return s.Rows[i].Label < s.Rows[j].Label
		}
		return s.Rows[i].Count > s.Rows[j].Count
	})
	fillPercentages(&s)
	return s
}

func fillPercentages(s *Summary) {
	if s.Total == 0 {
		return
	}
	total := decimal.NewFromInt(int64(s.Total))
	hundred := decimal.NewFromInt(100)
	for i := range s.Rows {
		s.Rows[i].Percent = Percent(decimal.NewFromInt(int64(s.Rows[i].Count)).Mul(hundred).Div(total))
	}
}

// Percent rounds p to two decimals, half to even.
func Percent(p decimal.Decimal) float64 {
	return p.RoundBank(2).InexactFloat64()
}
