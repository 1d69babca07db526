package nav

import "testing"

func TestBuildHidesAuthItemsForGuests(t *testing.T) {
	guest := Build("/templates/3", false)
	for _, it := range guest {
		if it.Href == "/orders" {
			t.Fatalf("orders link must be hidden for guests")
		}
	}
	if len(guest) != 2 || !guest[0].Active {
		t.Fatalf("unexpected guest nav %+v", guest)
	}
	member := Build("/orders", true)
	if len(member) != len(Main) {
		t.Fatalf("expected all items, got %d", len(member))
	}
	for _, it := range member {
		if it.Href == "/orders" && !it.Active {
			t.Fatalf("orders should be active")
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/templates/3/customize")
	if len(crumbs) != 4 {
		t.Fatalf("expected 4 crumbs, got %+v", crumbs)
	}
	if crumbs[1].LabelKey != "nav.templates" || crumbs[1].Href != "/templates" {
		t.Fatalf("unexpected section crumb %+v", crumbs[1])
	}
	if crumbs[2].Label != "#3" || crumbs[2].Href != "/templates/3" {
		t.Fatalf("unexpected id crumb %+v", crumbs[2])
	}
	if !crumbs[3].Active || crumbs[3].LabelKey != "crumb.customize" {
		t.Fatalf("unexpected leaf crumb %+v", crumbs[3])
	}
	if c := Breadcrumbs("/checkout"); c[1].LabelKey != "nav.checkout" {
		t.Fatalf("expected checkout alias, got %+v", c)
	}
}

func TestBreadcrumbsSlugAndAliasedSection(t *testing.T) {
	crumbs := Breadcrumbs("/templates/12-thiep-hoa-hong")
	if len(crumbs) != 3 || crumbs[2].Label != "#12" || !crumbs[2].Active {
		t.Fatalf("unexpected slug crumbs %+v", crumbs)
	}
	inv := Breadcrumbs("/invitations/7/edit")
	if inv[1].Href != "/my-invitations" || inv[1].LabelKey != "nav.my_invitations" {
		t.Fatalf("expected invitations to point at the listing, got %+v", inv[1])
	}
	if inv[3].LabelKey != "crumb.edit" {
		t.Fatalf("unexpected action crumb %+v", inv[3])
	}
	if c := Breadcrumbs("/"); len(c) != 1 || !c[0].Active {
		t.Fatalf("home should be a single active crumb, got %+v", c)
	}
}
