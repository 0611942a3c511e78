package store

import (
	"context"
	"strings"
	"testing"

	"github.com/divegear/gearbase/internal/db"
	"github.com/divegear/gearbase/internal/model"
)

func TestCreateMemberDuplicateName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateMember(ctx, database, &model.Member{LastName: "Cousteau", FirstName: "Jacques"}); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	_, err := CreateMember(ctx, database, &model.Member{LastName: "Cousteau", FirstName: "Jacques"})
	if err == nil {
		t.Error("expected error creating duplicate member")
	}
}

func TestImportMembersCSV(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	csv := `last_name,first_name,license_nb
Cousteau,Jacques,A-1234
Hass,Lotte,B-5678
Mayol,Jacques,
`
	imported, err := ImportMembersCSV(ctx, database, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportMembersCSV: %v", err)
	}
	if imported != 3 {
		t.Errorf("expected 3 imported, got %d", imported)
	}

	members, _ := ListMembers(ctx, database, false)
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}

	// Re-importing the same file adds nobody.
	imported, err = ImportMembersCSV(ctx, database, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportMembersCSV again: %v", err)
	}
	if imported != 0 {
		t.Errorf("expected 0 imported on re-run, got %d", imported)
	}
}

func TestImportMembersCSVWithoutHeader(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	imported, err := ImportMembersCSV(ctx, database, strings.NewReader("Cousteau,Jacques\n"))
	if err != nil {
		t.Fatalf("ImportMembersCSV: %v", err)
	}
	if imported != 1 {
		t.Errorf("expected 1 imported, got %d", imported)
	}
}

func TestMemberIDByLicense(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	member, _ := CreateMember(ctx, database, &model.Member{LastName: "Hass", FirstName: "Lotte", LicenseNb: "B-5678"})

	id, err := MemberIDByLicense(ctx, database, "B-5678")
	if err != nil {
		t.Fatalf("MemberIDByLicense: %v", err)
	}
	if id != member.ID {
		t.Errorf("expected id %d, got %d", member.ID, id)
	}

	if _, err := MemberIDByLicense(ctx, database, "Z-0000"); err == nil {
		t.Error("expected error for unknown license")
	}
}

func TestGuaranteeFiltering(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	withG, _ := CreateMember(ctx, database, &model.Member{LastName: "Hass", FirstName: "Lotte"})
	CreateMember(ctx, database, &model.Member{LastName: "Mayol", FirstName: "Jacques"})

	SetMemberGuarantee(ctx, database, withG.ID, true, "2026-12-31")

	members, err := ListMembers(ctx, database, true)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].ID != withG.ID {
		t.Errorf("expected only the guaranteed member, got %+v", members)
	}
}

func TestDeleteAllMembers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateMember(ctx, database, &model.Member{LastName: "Hass", FirstName: "Lotte"})
	CreateMember(ctx, database, &model.Member{LastName: "Mayol", FirstName: "Jacques"})

	n, err := DeleteAllMembers(ctx, database)
	if err != nil {
		t.Fatalf("DeleteAllMembers: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	members, _ := ListMembers(ctx, database, false)
	if len(members) != 0 {
		t.Errorf("expected no members, got %d", len(members))
	}
}
