package market

import (
	"testing"

	"albion-market/internal/aodata"
)

func TestProjectChart_OmitsZeroSellCities(t *testing.T) {
	groups := []CityPrices{
		{City: "Caerleon", ByQuality: map[int]QualityPrice{2: {SellPriceMin: 100, BuyPriceMax: 90}}},
		{City: "Martlock", ByQuality: map[int]QualityPrice{2: {SellPriceMin: 0, BuyPriceMax: 50}}},
		{City: "Thetford", ByQuality: map[int]QualityPrice{1: {SellPriceMin: 70}}},
	}
	points := ProjectChart(groups, 2)
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1 (only Caerleon has sell data at q2)", len(points))
	}
	if points[0].City != "Caerleon" || points[0].SellPriceMin != 100 || points[0].BuyPriceMax != 90 {
		t.Errorf("point = %+v", points[0])
	}
}

func TestProjectChart_EmptyGroups(t *testing.T) {
	if points := ProjectChart(nil, 1); len(points) != 0 {
		t.Errorf("ProjectChart(nil) = %v, want empty", points)
	}
}

func TestFormatHistory_Labels(t *testing.T) {
	points := FormatHistory([]aodata.HistoryPoint{
		{Timestamp: "2026-08-28T20:00:00", AveragePrice: 1234.5, ItemCount: 12},
	})
	if len(points) != 1 {
		t.Fatalf("len = %d, want 1", len(points))
	}
	if points[0].Label != "20:00" {
		t.Errorf("Label = %q, want 20:00", points[0].Label)
	}
	if points[0].AveragePrice != 1234.5 || points[0].ItemCount != 12 {
		t.Errorf("point = %+v", points[0])
	}
}

func TestFormatHistory_UnparseableTimestampKeepsRaw(t *testing.T) {
	points := FormatHistory([]aodata.HistoryPoint{{Timestamp: "not-a-time", AveragePrice: 1}})
	if points[0].Label != "not-a-time" {
		t.Errorf("Label = %q, want raw timestamp kept", points[0].Label)
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	if points := FormatHistory(nil); len(points) != 0 {
		t.Errorf("FormatHistory(nil) = %v, want empty", points)
	}
}
