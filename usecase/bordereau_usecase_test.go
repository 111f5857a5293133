package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/pkg/logger"
)

type bordereauFixture struct {
	bordereauRepo *fakeBordereauRepo
	itemRepo      *fakeItemRepo
	driverRepo    *fakeDriverRepo
	managerRepo   *fakeManagerRepo
	uc            BordereauUseCase
}

func newBordereauFixture() *bordereauFixture {
	itemRepo := newFakeItemRepo()
	f := &bordereauFixture{
		bordereauRepo: newFakeBordereauRepo(itemRepo),
		itemRepo:      itemRepo,
		driverRepo:    newFakeDriverRepo(),
		managerRepo:   newFakeManagerRepo(),
	}
	f.uc = NewBordereauUseCase(f.bordereauRepo, f.itemRepo, f.driverRepo, f.managerRepo, logger.NoOpLogger())
	return f
}

func (f *bordereauFixture) seedBordereau(t *testing.T, bordereau *model.Bordereau) {
	t.Helper()
	require.NoError(t, f.bordereauRepo.Save(context.Background(), bordereau))
}

func (f *bordereauFixture) seedDriver(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, f.driverRepo.Create(context.Background(), &model.Driver{
		UserAccount: model.UserAccount{Username: "driver_" + code, Code: code, IsActive: true},
	}))
}

func TestUpdateBordereau_CompletedStampsTimestampOnce(t *testing.T) {
	f := newBordereauFixture()
	f.seedBordereau(t, &model.Bordereau{BordereauNumber: "BRD-1", Status: model.BordereauInProgress})

	completed := model.BordereauCompleted
	result, err := f.uc.UpdateBordereau(context.Background(), "BRD-1", &UpdateBordereauInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, result.CompletedAt, "Completing a bordereau stamps CompletedAt")
	first := *result.CompletedAt

	result, err = f.uc.UpdateBordereau(context.Background(), "BRD-1", &UpdateBordereauInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, result.CompletedAt)
	assert.Equal(t, first, *result.CompletedAt, "Re-completing must not move the timestamp")
}

func TestUpdateBordereau_InvalidStatus(t *testing.T) {
	f := newBordereauFixture()
	f.seedBordereau(t, &model.Bordereau{BordereauNumber: "BRD-2", Status: model.BordereauCreated})

	bogus := model.BordereauStatus("LOST")
	_, err := f.uc.UpdateBordereau(context.Background(), "BRD-2", &UpdateBordereauInput{Status: &bogus})
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeValidationError, appErr.Code)
}

func TestUpdateBordereau_PartialUpdateKeepsOtherFields(t *testing.T) {
	f := newBordereauFixture()
	driver := "DRV-1"
	f.seedBordereau(t, &model.Bordereau{
		BordereauNumber:   "BRD-3",
		Status:            model.BordereauInProgress,
		CurrentDriverCode: &driver,
	})

	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	result, err := f.uc.UpdateBordereau(context.Background(), "BRD-3", &UpdateBordereauInput{DeliveryDate: &date})
	require.NoError(t, err)

	assert.Equal(t, model.BordereauInProgress, result.Status, "Omitted status keeps its value")
	require.NotNil(t, result.CurrentDriverCode)
	assert.Equal(t, "DRV-1", *result.CurrentDriverCode, "Driver linkage is untouched by the update")
}

func TestReassign_UnknownDriverIsNotFound(t *testing.T) {
	f := newBordereauFixture()
	f.seedBordereau(t, &model.Bordereau{BordereauNumber: "BRD-4", Status: model.BordereauCreated})

	unknown := "DRV-404"
	_, err := f.uc.Reassign(context.Background(), "BRD-4", &ReassignBordereauInput{DriverCode: &unknown})
	require.Error(t, err, "Reassignment never synthesizes placeholder drivers")

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeResourceNotFound, appErr.Code, "Expected a not-found error")
	assert.Empty(t, f.driverRepo.drivers, "No placeholder may be created by reassignment")
}

func TestReassign_KeepsOriginalDriver(t *testing.T) {
	f := newBordereauFixture()
	f.seedDriver(t, "DRV-1")
	f.seedDriver(t, "DRV-2")

	original := "DRV-1"
	f.seedBordereau(t, &model.Bordereau{
		BordereauNumber:    "BRD-5",
		Status:             model.BordereauInProgress,
		CurrentDriverCode:  &original,
		OriginalDriverCode: &original,
	})

	next := "DRV-2"
	result, err := f.uc.Reassign(context.Background(), "BRD-5", &ReassignBordereauInput{DriverCode: &next})
	require.NoError(t, err)

	require.NotNil(t, result.CurrentDriverCode)
	assert.Equal(t, "DRV-2", *result.CurrentDriverCode, "Reassignment moves the current driver")
	require.NotNil(t, result.OriginalDriverCode)
	assert.Equal(t, "DRV-1", *result.OriginalDriverCode, "Reassignment never touches the original driver")
}

func TestReassign_RequiresAField(t *testing.T) {
	f := newBordereauFixture()

	_, err := f.uc.Reassign(context.Background(), "BRD-6", &ReassignBordereauInput{})
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeValidationError, appErr.Code)
}

func TestGetDeliveryItems_UnknownBordereau(t *testing.T) {
	f := newBordereauFixture()

	_, err := f.uc.GetDeliveryItems(context.Background(), "BRD-404")
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeResourceNotFound, appErr.Code)
}

func TestListBordereaux_ClampsPagination(t *testing.T) {
	f := newBordereauFixture()
	for _, n := range []string{"BRD-10", "BRD-11", "BRD-12"} {
		f.seedBordereau(t, &model.Bordereau{BordereauNumber: n, Status: model.BordereauCreated})
	}

	bordereaux, total, err := f.uc.ListBordereaux(context.Background(), -5, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, total, "Total reflects all rows")
	assert.Len(t, bordereaux, 3, "Negative offset and zero limit fall back to defaults")
}
