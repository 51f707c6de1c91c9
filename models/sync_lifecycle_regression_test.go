package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/models"
	"github.com/mmdatafocus/lottery_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// End-to-end run of the sync surface against real MySQL + Redis: device
// login, pack lifecycle, shift ledger with variance derivation, two-phase
// day close, approval, and tenant isolation between two stores.
func TestSyncLifecycleEndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "lottery_test")
	// Keep audit rows local; the dispatcher is not running in tests.
	t.Setenv("AUDIT_PUBSUB_ENABLED", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}

	adminCtx := utils.SetIsAdminInContext(ctx, true)
	adminCtx = utils.SetSkipTenantScopeInContext(adminCtx, true)

	// 1) Seed jurisdiction, two stores, a shared game.
	jur, err := models.CreateJurisdiction(adminCtx, "TX", "Texas")
	if err != nil {
		t.Fatalf("CreateJurisdiction: %v", err)
	}
	storeA, err := models.CreateStore(adminCtx, &models.NewStore{
		JurisdictionId: jur.ID,
		Name:           "Store A",
		RetailerNumber: "A-001",
		Timezone:       "America/Chicago",
	})
	if err != nil {
		t.Fatalf("CreateStore A: %v", err)
	}
	storeB, err := models.CreateStore(adminCtx, &models.NewStore{
		JurisdictionId: jur.ID,
		Name:           "Store B",
		RetailerNumber: "B-001",
		Timezone:       "America/Chicago",
	})
	if err != nil {
		t.Fatalf("CreateStore B: %v", err)
	}
	game, err := models.CreateGame(adminCtx, &models.NewGame{
		JurisdictionId: jur.ID,
		Code:           "1234",
		Name:           "Lucky 7s",
		TicketPrice:    decimal.NewFromInt(5),
		TicketsPerPack: 300,
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	// 2) Device login for store A.
	cred, secret, err := models.CreateApiCredential(adminCtx, &models.NewApiCredential{
		StoreId: storeA.ID.String(),
		Label:   "register-1",
	})
	if err != nil {
		t.Fatalf("CreateApiCredential: %v", err)
	}
	session, err := models.CreateSyncSession(ctx, cred.ID, secret, "test-device")
	if err != nil {
		t.Fatalf("CreateSyncSession: %v", err)
	}
	if _, err := models.CreateSyncSession(ctx, cred.ID, "wrong-secret", "test-device"); err == nil {
		t.Fatalf("login with wrong secret should fail")
	}

	identity, err := models.ValidateSession(ctx, session.ID, cred.ID)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if identity.StoreId != storeA.ID.String() {
		t.Fatalf("identity bound to wrong store: %s", identity.StoreId)
	}

	// Request context the way the API handlers build it.
	reqCtx := utils.SetStoreIdInContext(ctx, identity.StoreId)
	reqCtx = utils.SetJurisdictionIdInContext(reqCtx, identity.JurisdictionId)
	reqCtx = utils.SetSessionIdInContext(reqCtx, identity.SessionId)
	reqCtx = utils.SetCredentialIdInContext(reqCtx, identity.CredentialId)
	reqCtx = utils.SetCorrelationIdInContext(reqCtx, uuid.NewString())
	reqCtx = utils.SetSourceAddressInContext(reqCtx, "10.1.2.3")
	reqCtx = utils.SetDeviceFingerprintInContext(reqCtx, "test-device-a")

	// 3) Bins.
	bin1, err := models.CreateBin(reqCtx, &models.NewBin{Label: "1", DisplayOrder: 1})
	if err != nil {
		t.Fatalf("CreateBin 1: %v", err)
	}
	bin2, err := models.CreateBin(reqCtx, &models.NewBin{Label: "2", DisplayOrder: 2})
	if err != nil {
		t.Fatalf("CreateBin 2: %v", err)
	}

	// 4) Receive a pack, then replay the receive (device retry).
	packId := uuid.NewString()
	pack, err := models.ReceivePack(reqCtx, identity, &models.ReceivePackInput{
		PackId:      packId,
		GameCode:    game.Code,
		PackNumber:  "0001234",
		StartSerial: "000",
		EndSerial:   "299",
		EntryMethod: string(models.EntryMethodScanned),
	})
	if err != nil {
		t.Fatalf("ReceivePack: %v", err)
	}
	if pack.Status != models.PackStatusReceived {
		t.Fatalf("received pack status = %s", pack.Status)
	}
	_, err = models.ReceivePack(reqCtx, identity, &models.ReceivePackInput{
		PackId:      uuid.NewString(),
		GameCode:    game.Code,
		PackNumber:  "0001234",
		StartSerial: "000",
		EndSerial:   "299",
	})
	if !models.IsCode(err, models.CodeDuplicatePack) {
		t.Fatalf("replayed receive should be DUPLICATE_PACK, got %v", err)
	}

	// 5) Activate; re-activating into the same bin is an idempotent no-op,
	// a different bin is a conflict.
	activated, idem, err := models.ActivatePack(reqCtx, identity, &models.ActivatePackInput{
		PackId: packId,
		BinId:  bin1.ID,
	})
	if err != nil {
		t.Fatalf("ActivatePack: %v", err)
	}
	if idem {
		t.Fatalf("first activation must not report idempotent")
	}
	if activated.Status != models.PackStatusActive || activated.BinId == nil || *activated.BinId != bin1.ID {
		t.Fatalf("activation result wrong: status=%s bin=%v", activated.Status, activated.BinId)
	}
	_, idem, err = models.ActivatePack(reqCtx, identity, &models.ActivatePackInput{
		PackId: packId,
		BinId:  bin1.ID,
	})
	if err != nil || !idem {
		t.Fatalf("same-bin reactivation should be idempotent, idem=%v err=%v", idem, err)
	}
	_, _, err = models.ActivatePack(reqCtx, identity, &models.ActivatePackInput{
		PackId: packId,
		BinId:  bin2.ID,
	})
	if !models.IsCode(err, models.CodeAlreadyActive) {
		t.Fatalf("activation into another bin should be ALREADY_ACTIVE, got %v", err)
	}

	// Activation of a pack the server never saw creates it on the fly.
	lazyPackId := uuid.NewString()
	lazy, idem, err := models.ActivatePack(reqCtx, identity, &models.ActivatePackInput{
		PackId:      lazyPackId,
		BinId:       bin2.ID,
		GameCode:    game.Code,
		PackNumber:  "0005678",
		StartSerial: "000",
		EndSerial:   "299",
	})
	if err != nil || idem {
		t.Fatalf("create-on-activate failed: idem=%v err=%v", idem, err)
	}
	if lazy.Status != models.PackStatusActive {
		t.Fatalf("create-on-activate status = %s", lazy.Status)
	}

	// 6) Move requires the stated source bin to match.
	_, err = models.MovePack(reqCtx, identity, &models.MovePackInput{
		PackId:    packId,
		FromBinId: bin2.ID,
		ToBinId:   bin1.ID,
	})
	if !models.IsCode(err, models.CodeBinMismatch) {
		t.Fatalf("stale move should be BIN_MISMATCH, got %v", err)
	}
	moved, err := models.MovePack(reqCtx, identity, &models.MovePackInput{
		PackId:    packId,
		FromBinId: bin1.ID,
		ToBinId:   bin2.ID,
	})
	if err != nil {
		t.Fatalf("MovePack: %v", err)
	}
	if moved.BinId == nil || *moved.BinId != bin2.ID {
		t.Fatalf("pack not in destination bin after move")
	}

	// 7) Shift: open with readings, close with a divergent actual count.
	approver, err := models.CreateUser(adminCtx, &models.NewUser{
		StoreId:  storeA.ID.String(),
		Username: "manager-a",
		Name:     "Manager A",
		Password: "secret-pw",
		Role:     models.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	shiftId := uuid.NewString()
	_, err = models.OpenShift(reqCtx, identity, &models.OpenShiftInput{
		ShiftId: shiftId,
		Openings: []models.OpeningReading{
			{PackId: packId, OpeningSerial: "000"},
		},
	})
	if err != nil {
		t.Fatalf("OpenShift: %v", err)
	}
	// Resending the open is safe.
	_, err = models.OpenShift(reqCtx, identity, &models.OpenShiftInput{
		ShiftId: shiftId,
		Openings: []models.OpeningReading{
			{PackId: packId, OpeningSerial: "000"},
		},
	})
	if err != nil {
		t.Fatalf("OpenShift replay: %v", err)
	}
	// Late openings for the same pack upsert rather than duplicate.
	if err := models.RecordShiftOpenings(reqCtx, identity, shiftId, []models.OpeningReading{
		{PackId: packId, OpeningSerial: "000"},
	}); err != nil {
		t.Fatalf("RecordShiftOpenings: %v", err)
	}

	actual := 50 // serial delta says 45
	_, variances, err := models.CloseShift(reqCtx, identity, &models.CloseShiftInput{
		ShiftId: shiftId,
		Closings: []models.ClosingReading{
			{
				PackId:           packId,
				ClosingSerial:    "045",
				EntryMethod:      string(models.EntryMethodManual),
				ManualAuthorizer: &approver.ID,
				ActualSold:       &actual,
			},
		},
	})
	if err != nil {
		t.Fatalf("CloseShift: %v", err)
	}
	if len(variances) != 1 {
		t.Fatalf("expected 1 variance, got %d", len(variances))
	}
	v := variances[0]
	if v.Expected != 45 || v.Actual != 50 || v.Difference != 5 {
		t.Fatalf("variance math wrong: expected=%d actual=%d diff=%d", v.Expected, v.Actual, v.Difference)
	}

	// A device retry of the same close must not pile up variance rows.
	_, retried, err := models.CloseShift(reqCtx, identity, &models.CloseShiftInput{
		ShiftId: shiftId,
		Closings: []models.ClosingReading{
			{
				PackId:           packId,
				ClosingSerial:    "045",
				EntryMethod:      string(models.EntryMethodManual),
				ManualAuthorizer: &approver.ID,
				ActualSold:       &actual,
			},
		},
	})
	if err != nil {
		t.Fatalf("CloseShift retry: %v", err)
	}
	if len(retried) != 1 || retried[0].ID != v.ID {
		t.Fatalf("retried close should return the original variance row, got %+v", retried)
	}
	var varianceRows int64
	if err := db.WithContext(adminCtx).Model(&models.Variance{}).
		Where("shift_id = ? AND pack_id = ?", shiftId, packId).
		Count(&varianceRows).Error; err != nil {
		t.Fatalf("count variances: %v", err)
	}
	if varianceRows != 1 {
		t.Fatalf("close retry duplicated variances: %d rows", varianceRows)
	}

	// Manual entry without a valid authorizer is rejected.
	badAuthorizer := 999999
	_, _, err = models.CloseShift(reqCtx, identity, &models.CloseShiftInput{
		ShiftId: shiftId,
		Closings: []models.ClosingReading{
			{
				PackId:           packId,
				ClosingSerial:    "045",
				EntryMethod:      string(models.EntryMethodManual),
				ManualAuthorizer: &badAuthorizer,
			},
		},
	})
	if !models.IsCode(err, models.CodeApproverNotFound) {
		t.Fatalf("unknown authorizer should be APPROVER_NOT_FOUND, got %v", err)
	}

	// 8) Variance approval is not reentrant.
	_, err = models.ApproveVariance(reqCtx, identity.StoreId, &models.ApproveVarianceInput{
		VarianceId: v.ID,
		ApproverId: approver.ID,
	})
	if err != nil {
		t.Fatalf("ApproveVariance: %v", err)
	}
	_, err = models.ApproveVariance(reqCtx, identity.StoreId, &models.ApproveVarianceInput{
		VarianceId: v.ID,
		ApproverId: approver.ID,
	})
	if !models.IsCode(err, models.CodeAlreadyApproved) {
		t.Fatalf("second approval should be ALREADY_APPROVED, got %v", err)
	}

	// 9) Two-phase day close.
	day, err := models.OpenBusinessDay(reqCtx, identity.StoreId, "2026-08-28")
	if err != nil {
		t.Fatalf("OpenBusinessDay: %v", err)
	}

	// Commit without a prepare is a precondition failure.
	_, _, err = models.CommitDayClose(reqCtx, identity, &models.CommitDayCloseInput{DayId: day.ID})
	if !models.IsCode(err, models.CodeInvalidStatus) {
		t.Fatalf("commit without prepare should be INVALID_STATUS, got %v", err)
	}

	_, expiresAt, err := models.PrepareDayClose(reqCtx, identity, &models.PrepareDayCloseInput{
		DayId: day.ID,
		Closings: []models.StagedClosing{
			{PackId: packId, EndingSerial: "045", BinId: &bin2.ID},
		},
	})
	if err != nil {
		t.Fatalf("PrepareDayClose: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future: %s", expiresAt)
	}

	// Expired stages refuse to commit. Backdate the window directly.
	if err := db.WithContext(adminCtx).Model(&models.BusinessDay{}).
		Where("id = ?", day.ID).
		Update("pending_expires_at", time.Now().UTC().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}
	_, _, err = models.CommitDayClose(reqCtx, identity, &models.CommitDayCloseInput{DayId: day.ID})
	if !models.IsCode(err, models.CodeExpired) {
		t.Fatalf("commit after expiry should be EXPIRED, got %v", err)
	}

	// Cancel works even on an expired stage, then re-prepare and commit.
	if _, err := models.CancelDayClose(reqCtx, identity, &models.CancelDayCloseInput{DayId: day.ID}); err != nil {
		t.Fatalf("CancelDayClose: %v", err)
	}
	_, _, err = models.PrepareDayClose(reqCtx, identity, &models.PrepareDayCloseInput{
		DayId: day.ID,
		Closings: []models.StagedClosing{
			{PackId: packId, EndingSerial: "045", BinId: &bin2.ID},
		},
	})
	if err != nil {
		t.Fatalf("re-prepare: %v", err)
	}
	closedDay, dayPacks, err := models.CommitDayClose(reqCtx, identity, &models.CommitDayCloseInput{DayId: day.ID})
	if err != nil {
		t.Fatalf("CommitDayClose: %v", err)
	}
	if closedDay.Status != models.BusinessDayStatusClosed {
		t.Fatalf("day status after commit = %s", closedDay.Status)
	}
	if len(dayPacks) != 1 {
		t.Fatalf("expected 1 day pack, got %d", len(dayPacks))
	}
	dp := dayPacks[0]
	// First day for this pack starts from the pack's own start serial.
	if dp.StartingSerial != "000" || dp.EndingSerial != "045" || dp.TicketsSold != 45 {
		t.Fatalf("day pack wrong: start=%s end=%s sold=%d", dp.StartingSerial, dp.EndingSerial, dp.TicketsSold)
	}
	if !dp.SalesAmount.Equal(decimal.NewFromInt(225)) { // 45 tickets x $5
		t.Fatalf("day pack sales amount = %s", dp.SalesAmount)
	}
	if closedDay.TotalTicketsSold != 45 || !closedDay.TotalSalesAmount.Equal(decimal.NewFromInt(225)) {
		t.Fatalf("day totals wrong: sold=%d amount=%s", closedDay.TotalTicketsSold, closedDay.TotalSalesAmount)
	}

	// Next day picks up where the last DayPack ended.
	day2, err := models.OpenBusinessDay(reqCtx, identity.StoreId, "2026-08-29")
	if err != nil {
		t.Fatalf("OpenBusinessDay day2: %v", err)
	}
	_, _, err = models.PrepareDayClose(reqCtx, identity, &models.PrepareDayCloseInput{
		DayId: day2.ID,
		Closings: []models.StagedClosing{
			{PackId: packId, EndingSerial: "100"},
		},
	})
	if err != nil {
		t.Fatalf("prepare day2: %v", err)
	}
	_, dayPacks2, err := models.CommitDayClose(reqCtx, identity, &models.CommitDayCloseInput{DayId: day2.ID})
	if err != nil {
		t.Fatalf("commit day2: %v", err)
	}
	if dayPacks2[0].StartingSerial != "045" || dayPacks2[0].TicketsSold != 55 {
		t.Fatalf("day2 pack wrong: start=%s sold=%d", dayPacks2[0].StartingSerial, dayPacks2[0].TicketsSold)
	}

	// 10) Deplete then return.
	depleted, err := models.DepletePack(reqCtx, identity, &models.DepletePackInput{
		PackId:      packId,
		FinalSerial: "299",
		Reason:      "SOLD_OUT",
	})
	if err != nil {
		t.Fatalf("DepletePack: %v", err)
	}
	if depleted.Status != models.PackStatusDepleted || depleted.TicketsSold != 299 {
		t.Fatalf("depletion wrong: status=%s sold=%d", depleted.Status, depleted.TicketsSold)
	}
	returned, err := models.ReturnPack(reqCtx, identity, &models.ReturnPackInput{
		PackId: packId,
		Reason: "GAME_ENDED",
	})
	if err != nil {
		t.Fatalf("ReturnPack: %v", err)
	}
	if returned.Status != models.PackStatusReturned {
		t.Fatalf("return status = %s", returned.Status)
	}
	_, err = models.ReturnPack(reqCtx, identity, &models.ReturnPackInput{
		PackId: packId,
		Reason: "GAME_ENDED",
	})
	if !models.IsCode(err, models.CodeAlreadyReturned) {
		t.Fatalf("second return should be ALREADY_RETURNED, got %v", err)
	}

	// 11) Delta pagination: walking the cursor enumerates every bin exactly
	// once, and the final cursor yields an empty page instead of replaying
	// the boundary row.
	for i := 3; i <= 5; i++ {
		if _, err := models.CreateBin(reqCtx, &models.NewBin{
			Label:        fmt.Sprintf("%d", i),
			DisplayOrder: i,
		}); err != nil {
			t.Fatalf("CreateBin %d: %v", i, err)
		}
	}
	seen := map[string]int{}
	filter := models.PullFilter{Limit: 2}
	wantSeq := int64(0)
	for page := 0; ; page++ {
		if page > 10 {
			t.Fatalf("bin pagination did not terminate")
		}
		res, err := models.PullDelta[models.Bin](reqCtx, filter, nil)
		if err != nil {
			t.Fatalf("PullDelta bins page %d: %v", page, err)
		}
		for _, rec := range res.Records {
			if rec.Sequence != wantSeq {
				t.Fatalf("sequence gap: got %d want %d", rec.Sequence, wantSeq)
			}
			wantSeq++
			seen[rec.Record.ID]++
		}
		if !res.HasMore {
			filter = models.PullFilter{
				Since:         res.NextSince,
				SinceId:       res.NextSinceId,
				SinceSequence: res.NextSeq,
				Limit:         2,
			}
			break
		}
		filter = models.PullFilter{
			Since:         res.NextSince,
			SinceId:       res.NextSinceId,
			SinceSequence: res.NextSeq,
			Limit:         2,
		}
	}
	if len(seen) != 5 {
		t.Fatalf("pagination returned %d distinct bins, want 5", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("bin %s delivered %d times", id, n)
		}
	}
	tail, err := models.PullDelta[models.Bin](reqCtx, filter, nil)
	if err != nil {
		t.Fatalf("PullDelta bins tail: %v", err)
	}
	if len(tail.Records) != 0 {
		t.Fatalf("exhausted cursor re-delivered %d rows", len(tail.Records))
	}

	// 12) Tenant isolation: store B's device cannot see store A's packs.
	credB, secretB, err := models.CreateApiCredential(adminCtx, &models.NewApiCredential{
		StoreId: storeB.ID.String(),
		Label:   "register-b",
	})
	if err != nil {
		t.Fatalf("CreateApiCredential B: %v", err)
	}
	sessionB, err := models.CreateSyncSession(ctx, credB.ID, secretB, "test-device-b")
	if err != nil {
		t.Fatalf("CreateSyncSession B: %v", err)
	}
	identityB, err := models.ValidateSession(ctx, sessionB.ID, credB.ID)
	if err != nil {
		t.Fatalf("ValidateSession B: %v", err)
	}
	reqCtxB := utils.SetStoreIdInContext(ctx, identityB.StoreId)
	reqCtxB = utils.SetSessionIdInContext(reqCtxB, identityB.SessionId)
	reqCtxB = utils.SetCredentialIdInContext(reqCtxB, identityB.CredentialId)

	result, err := models.PullDelta[models.Pack](reqCtxB, models.PullFilter{Limit: 100}, func(q *gorm.DB) *gorm.DB {
		return q.Where("store_id = ?", identityB.StoreId)
	})
	if err != nil {
		t.Fatalf("PullDelta packs store B: %v", err)
	}
	if len(result.Records) != 0 {
		t.Fatalf("store B sees %d of store A's packs", len(result.Records))
	}
	if _, err := models.DepletePack(reqCtxB, identityB, &models.DepletePackInput{
		PackId:      lazyPackId,
		FinalSerial: "299",
		Reason:      "SOLD_OUT",
	}); !models.IsCode(err, models.CodePackNotFound) {
		t.Fatalf("cross-store deplete should be PACK_NOT_FOUND, got %v", err)
	}

	// Session validation refuses a mismatched credential.
	if _, err := models.ValidateSession(ctx, session.ID, credB.ID); !models.IsCode(err, models.CodeInvalidSession) {
		t.Fatalf("cross-credential validation should be INVALID_SESSION, got %v", err)
	}

	// 13) Completing a session ends pull/push access.
	if err := models.CompleteSyncSession(ctx, session.ID, cred.ID); err != nil {
		t.Fatalf("CompleteSyncSession: %v", err)
	}
	if _, err := models.ValidateSession(ctx, session.ID, cred.ID); !models.IsCode(err, models.CodeInvalidSession) {
		t.Fatalf("completed session should be INVALID_SESSION, got %v", err)
	}
	// Completing twice is a no-op success.
	if err := models.CompleteSyncSession(ctx, session.ID, cred.ID); err != nil {
		t.Fatalf("second complete should be a no-op: %v", err)
	}

	// Audit trail exists for the lifecycle events, carrying the calling
	// device's provenance. The writer is async, so poll briefly.
	var auditCount, provenanced int64
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := db.WithContext(adminCtx).Model(&models.AuditEvent{}).
			Where("store_id = ?", identity.StoreId).Count(&auditCount).Error; err != nil {
			t.Fatalf("count audit events: %v", err)
		}
		if err := db.WithContext(adminCtx).Model(&models.AuditEvent{}).
			Where("store_id = ? AND source_address = ? AND device_fingerprint = ?",
				identity.StoreId, "10.1.2.3", "test-device-a").
			Count(&provenanced).Error; err != nil {
			t.Fatalf("count provenanced audit events: %v", err)
		}
		if auditCount > 0 && provenanced > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit trail incomplete: %d events, %d with device provenance", auditCount, provenanced)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("lottery-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("lottery-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=lottery_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
