package seo

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProductSchemaCarriesVNDOffer(t *testing.T) {
	p := Product{Name: "Vườn Hồng", URL: "https://thiepcuoi.vn/templates/3-vuon-hong", SKU: "3", PriceVND: 80000}
	var got map[string]any
	if err := json.Unmarshal([]byte(JSON(p.Schema())), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	offer, ok := got["offers"].(map[string]any)
	if !ok {
		t.Fatalf("missing offers: %v", got)
	}
	if offer["price"] != "80000" || offer["priceCurrency"] != "VND" {
		t.Fatalf("unexpected offer %v", offer)
	}
	if _, ok := got["image"]; ok {
		t.Fatalf("empty image should be omitted")
	}
}

func TestProductWithoutPriceHasNoOffer(t *testing.T) {
	if _, ok := (Product{Name: "x"}).Schema()["offers"]; ok {
		t.Fatalf("offer without price")
	}
}

func TestBreadcrumbListPositions(t *testing.T) {
	out := string(JSON(BreadcrumbList([]BreadcrumbItem{
		{Name: "Trang chủ", Item: "https://thiepcuoi.vn/"},
		{Name: "Mẫu thiệp"},
	})))
	if !strings.Contains(out, `"position":2`) {
		t.Fatalf("expected second position in %s", out)
	}
	if strings.Count(out, `"item"`) != 1 {
		t.Fatalf("last crumb without url should omit item: %s", out)
	}
}

func TestWebSiteSearchAction(t *testing.T) {
	m := WebSite("Thiệp Cưới", "https://thiepcuoi.vn/", "https://thiepcuoi.vn/templates?q=")
	action, ok := m["potentialAction"].(map[string]any)
	if !ok || action["target"] != "https://thiepcuoi.vn/templates?q={search_term_string}" {
		t.Fatalf("unexpected action %v", m["potentialAction"])
	}
}
