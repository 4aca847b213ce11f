package memstore

import (
	"fmt"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// DemoData builds a small, self-consistent book of members, tontines and
// transactions whose dates are relative to now, so the dashboard always
// has something to show for today, yesterday and the current week.
func DemoData(now time.Time) ([]domain.User, []domain.Group, []domain.Transaction) {
	day := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format(dayLayout)
	}
	at := func(offset int, clock string) string {
		return fmt.Sprintf("%s %s", day(offset), clock)
	}

	users := []domain.User{
		{ID: "u-001", FullName: "Amani Kabila", Status: domain.UserActive, JoinDate: day(120), Email: "amani.kabila@example.cd", Phone: "+243810000001", KYCStatus: domain.KYCVerified, TontineBeneficiary: true},
		{ID: "u-002", FullName: "Bénédicte Mwamba", Status: domain.UserActive, JoinDate: day(95), Email: "benedicte.mwamba@example.cd", Phone: "+243810000002", KYCStatus: domain.KYCVerified},
		{ID: "u-003", FullName: "Christian Tshisekedi", Status: domain.UserActive, JoinDate: day(80), Email: "christian.t@example.cd", Phone: "+243810000003", KYCStatus: domain.KYCPending},
		{ID: "u-004", FullName: "Dorcas Ilunga", Status: domain.UserActive, JoinDate: day(60), Email: "dorcas.ilunga@example.cd", Phone: "+243810000004", KYCStatus: domain.KYCVerified},
		{ID: "u-005", FullName: "Élodie Kasongo", Status: domain.UserActive, JoinDate: day(45), Email: "elodie.kasongo@example.cd", Phone: "+243810000005", KYCStatus: domain.KYCVerified},
		{ID: "u-006", FullName: "Fiston Lukusa", Status: domain.UserInactive, JoinDate: day(200), Email: "fiston.lukusa@example.cd", Phone: "+243810000006", KYCStatus: domain.KYCVerified},
		{ID: "u-007", FullName: "Grâce Mbuyi", Status: domain.UserSuspended, JoinDate: day(150), Email: "grace.mbuyi@example.cd", Phone: "+243810000007", KYCStatus: domain.KYCRejected},
		{ID: "u-008", FullName: "Héritier Nzuzi", Status: domain.UserActive, JoinDate: day(10), Email: "heritier.nzuzi@example.cd", Phone: "+243810000008", KYCStatus: domain.KYCPending},
	}

	groups := []domain.Group{
		{ID: "g-001", Name: "Tontine du Marché", Description: "Commerçants du marché central", TargetAmount: 500000, CreatedAt: day(100), Members: []string{"u-001", "u-002", "u-003", "u-004"}},
		{ID: "g-002", Name: "Likelemba Jeunesse", Description: "Épargne hebdomadaire des jeunes", TargetAmount: 150000, CreatedAt: day(40), Members: []string{"u-005", "u-008"}},
		{ID: "g-003", Name: "Moziki Mamans", Description: "Groupe d'entraide des mamans", TargetAmount: 300000, CreatedAt: day(20), Members: []string{}},
	}
	for i := range groups {
		groups[i].MemberCount = len(groups[i].Members)
	}

	txns := []domain.Transaction{
		{ID: "t-001", UserID: "u-001", UserName: "Amani Kabila", Type: domain.TxDeposit, Amount: 25000, Status: domain.TxSuccess, Date: at(0, "08:15")},
		{ID: "t-002", UserID: "u-002", UserName: "Bénédicte Mwamba", Type: domain.TxDeposit, Amount: 15000, Status: domain.TxSuccess, Date: at(0, "09:40")},
		{ID: "t-003", UserID: "u-003", UserName: "Christian Tshisekedi", Type: domain.TxDeposit, Amount: 10000, Status: domain.TxPending, Date: at(0, "10:05")},
		{ID: "t-004", UserID: "u-001", UserName: "Amani Kabila", Type: domain.TxDeposit, Amount: 20000, Status: domain.TxSuccess, Date: at(1, "08:30")},
		{ID: "t-005", UserID: "u-004", UserName: "Dorcas Ilunga", Type: domain.TxDeposit, Amount: 30000, Status: domain.TxSuccess, Date: at(1, "11:10")},
		{ID: "t-006", UserID: "u-005", UserName: "Élodie Kasongo", Type: domain.TxDeposit, Amount: 5000, Status: domain.TxFailed, Date: at(1, "16:45")},
		{ID: "t-007", UserID: "u-002", UserName: "Bénédicte Mwamba", Type: domain.TxWithdrawal, Amount: 8000, Status: domain.TxSuccess, Date: at(2, "13:00")},
		{ID: "t-008", UserID: "u-005", UserName: "Élodie Kasongo", Type: domain.TxDeposit, Amount: 12000, Status: domain.TxSuccess, Date: at(3, "07:55")},
		{ID: "t-009", UserID: "u-008", UserName: "Héritier Nzuzi", Type: domain.TxLoanEligibility, Amount: 0, Status: domain.TxSuccess, Date: at(4, "12:20"), Reason: "six consecutive weeks of deposits"},
		{ID: "t-010", UserID: "u-003", UserName: "Christian Tshisekedi", Type: domain.TxDeposit, Amount: 18000, Status: domain.TxSuccess, Date: at(5, "09:00")},
		{ID: "t-011", UserID: "u-006", UserName: "Fiston Lukusa", Type: domain.TxDeposit, Amount: 40000, Status: domain.TxSuccess, Date: at(12, "10:30")},
		{ID: "t-012", UserID: "u-001", UserName: "Amani Kabila", Type: domain.TxStatusChange, Amount: 0, Status: domain.TxSuccess, Date: at(30, "15:00"), Reason: "tontine beneficiary granted"},
	}

	return users, groups, txns
}
