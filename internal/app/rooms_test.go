package app

import (
	"testing"

	"github.com/mkraev/chime/internal/core"
)

func hasConn(members []core.ConnID, id core.ConnID) bool {
	for _, m := range members {
		if m == id {
			return true
		}
	}
	return false
}

func TestJoinAndMembersExcept(t *testing.T) {
	r := NewRooms()

	members := r.Join("r1", "a")
	if len(members) != 1 || !hasConn(members, "a") {
		t.Fatalf("members after first join = %v", members)
	}
	members = r.Join("r1", "b")
	if len(members) != 2 {
		t.Fatalf("members after second join = %v", members)
	}

	exceptA := r.MembersExcept("r1", "a")
	if len(exceptA) != 1 || exceptA[0] != "b" {
		t.Fatalf("membersExcept(a) = %v; want [b]", exceptA)
	}
	exceptB := r.MembersExcept("r1", "b")
	if len(exceptB) != 1 || exceptB[0] != "a" {
		t.Fatalf("membersExcept(b) = %v; want [a]", exceptB)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	members := r.Join("r1", "a")
	if len(members) != 1 {
		t.Fatalf("double join grew membership: %v", members)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")

	if empty := r.Leave("r1", "a"); !empty {
		t.Fatal("last leave must report the room empty")
	}
	if r.Has("r1") {
		t.Fatal("empty room must be deleted")
	}
	if r.Leave("r1", "a") {
		t.Fatal("leave on absent room must be a no-op")
	}
}

func TestLeaveKeepsPopulatedRoom(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	r.Join("r1", "b")

	if empty := r.Leave("r1", "a"); empty {
		t.Fatal("room with remaining members must survive")
	}
	if !r.Has("r1") {
		t.Fatal("room must still exist")
	}
	if got := r.MembersExcept("r1", ""); len(got) != 1 || got[0] != "b" {
		t.Fatalf("remaining members = %v; want [b]", got)
	}
}

func TestList(t *testing.T) {
	r := NewRooms()
	r.Join("r1", "a")
	r.Join("r1", "b")
	r.Join("r2", "c")

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("list = %d rooms; want 2", len(infos))
	}
	for _, info := range infos {
		switch info.ID {
		case "r1":
			if info.MemberCount != 2 {
				t.Fatalf("r1 count = %d; want 2", info.MemberCount)
			}
		case "r2":
			if info.MemberCount != 1 {
				t.Fatalf("r2 count = %d; want 1", info.MemberCount)
			}
		default:
			t.Fatalf("unexpected room %s", info.ID)
		}
	}
}
