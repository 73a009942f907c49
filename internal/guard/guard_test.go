package guard

import (
	"testing"

	"github.com/pkruglov/shopfloor-bot/pkg/models"
)

func TestAllow(t *testing.T) {
	mgr := &models.User{Role: models.RoleManager, IsActive: true}
	emp := &models.User{Role: models.RoleEmployee, IsActive: true}
	inactive := &models.User{Role: models.RoleAdmin, IsActive: false}

	if !CanManage(mgr) {
		t.Fatal("active manager denied")
	}
	if CanManage(emp) {
		t.Fatal("employee allowed to manage")
	}
	if !IsEmployee(emp) {
		t.Fatal("active employee denied")
	}
	if Allow(inactive, models.RoleAdmin) {
		t.Fatal("inactive user allowed")
	}
	if Allow(nil, models.RoleAdmin) {
		t.Fatal("nil user allowed")
	}
}
