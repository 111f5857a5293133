package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/pkg/logger"
)

type transferFixture struct {
	transferRepo  *fakeTransferRepo
	bordereauRepo *fakeBordereauRepo
	driverRepo    *fakeDriverRepo
	uc            TransferUseCase
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	f := &transferFixture{
		transferRepo:  newFakeTransferRepo(),
		bordereauRepo: newFakeBordereauRepo(nil),
		driverRepo:    newFakeDriverRepo(),
	}
	f.uc = NewTransferUseCase(f.transferRepo, f.bordereauRepo, f.driverRepo, logger.NoOpLogger())

	ctx := context.Background()
	for _, code := range []string{"DRV-1", "DRV-2"} {
		require.NoError(t, f.driverRepo.Create(ctx, &model.Driver{
			UserAccount: model.UserAccount{Username: "driver_" + code, Code: code, IsActive: true},
		}))
	}
	holder := "DRV-1"
	original := "DRV-1"
	require.NoError(t, f.bordereauRepo.Save(ctx, &model.Bordereau{
		BordereauNumber:    "BRD-1",
		Status:             model.BordereauInProgress,
		CurrentDriverCode:  &holder,
		OriginalDriverCode: &original,
	}))
	return f
}

func TestCreateTransfer_DefaultsFromCurrentDriver(t *testing.T) {
	f := newTransferFixture(t)

	transfer, err := f.uc.CreateTransfer(context.Background(), &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-2",
		TransferBarcode: "TRF-0001",
		Reason:          "shift handover",
	})
	require.NoError(t, err)

	assert.Equal(t, "DRV-1", transfer.FromDriverCode, "From defaults to the bordereau's current driver")
	assert.Equal(t, "DRV-2", transfer.ToDriverCode)
	assert.Equal(t, model.TransferPending, transfer.Status, "New transfers start pending")
	require.NotNil(t, transfer.TransferredAt)
}

func TestCreateTransfer_UnknownTargetDriver(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.uc.CreateTransfer(context.Background(), &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-404",
	})
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeResourceNotFound, appErr.Code)
}

func TestCreateTransfer_DuplicateBarcode(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateTransfer(ctx, &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-2",
		TransferBarcode: "TRF-0001",
	})
	require.NoError(t, err)

	_, err = f.uc.CreateTransfer(ctx, &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-2",
		TransferBarcode: "TRF-0001",
	})
	require.Error(t, err, "Barcodes are unique across transfers")

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeValidationError, appErr.Code)
}

func TestUpdateTransferStatus_CompletionMovesCustody(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	transfer, err := f.uc.CreateTransfer(ctx, &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-2",
	})
	require.NoError(t, err)

	updated, err := f.uc.UpdateTransferStatus(ctx, transfer.ID, model.TransferCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, updated.Status)

	bordereau, err := f.bordereauRepo.GetByNumber(ctx, "BRD-1")
	require.NoError(t, err)
	require.NotNil(t, bordereau.CurrentDriverCode)
	assert.Equal(t, "DRV-2", *bordereau.CurrentDriverCode, "Completion hands the bordereau to the target driver")
	require.NotNil(t, bordereau.OriginalDriverCode)
	assert.Equal(t, "DRV-1", *bordereau.OriginalDriverCode, "The original driver is never rewritten")
}

func TestUpdateTransferStatus_RejectionLeavesCustody(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	transfer, err := f.uc.CreateTransfer(ctx, &CreateTransferInput{
		BordereauNumber: "BRD-1",
		ToDriverCode:    "DRV-2",
	})
	require.NoError(t, err)

	_, err = f.uc.UpdateTransferStatus(ctx, transfer.ID, model.TransferRejected)
	require.NoError(t, err)

	bordereau, err := f.bordereauRepo.GetByNumber(ctx, "BRD-1")
	require.NoError(t, err)
	require.NotNil(t, bordereau.CurrentDriverCode)
	assert.Equal(t, "DRV-1", *bordereau.CurrentDriverCode, "A rejected transfer moves nothing")
}

func TestUpdateTransferStatus_InvalidStatus(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.uc.UpdateTransferStatus(context.Background(), "whatever", model.TransferStatus("MISPLACED"))
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeValidationError, appErr.Code)
}
