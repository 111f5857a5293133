package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/identity/keycloak"
	"pharmachain-service/pkg/metrics"
	"pharmachain-service/pkg/redis"
)

// Prometheus collectors register globally, so all usecase tests share
// one Metrics instance.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

func newTestMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("pharmachain_test")
	})
	return testMetrics
}

type fakeTransactor struct{}

func (fakeTransactor) ExecuteInTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeDriverRepo struct {
	drivers map[string]*model.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[string]*model.Driver)}
}

func (r *fakeDriverRepo) Create(_ context.Context, driver *model.Driver) error {
	if _, ok := r.drivers[driver.Code]; ok {
		return fmt.Errorf("duplicate driver %s", driver.Code)
	}
	driver.Role = model.RoleDriver
	r.drivers[driver.Code] = driver
	return nil
}

func (r *fakeDriverRepo) GetByCode(_ context.Context, code string) (*model.Driver, error) {
	driver, ok := r.drivers[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return driver, nil
}

func (r *fakeDriverRepo) GetByExternalID(_ context.Context, externalID string) (*model.Driver, error) {
	for _, driver := range r.drivers {
		if driver.ExternalID != nil && *driver.ExternalID == externalID {
			return driver, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeDriverRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := r.drivers[code]
	return ok, nil
}

func (r *fakeDriverRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, driver := range r.drivers {
		if driver.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDriverRepo) ExistsByLicenseNumber(_ context.Context, licenseNumber string) (bool, error) {
	for _, driver := range r.drivers {
		if driver.LicenseNumber != nil && *driver.LicenseNumber == licenseNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDriverRepo) Update(_ context.Context, driver *model.Driver) error {
	if _, ok := r.drivers[driver.Code]; !ok {
		return domain.ErrNotFound
	}
	r.drivers[driver.Code] = driver
	return nil
}

func (r *fakeDriverRepo) DeleteByCode(_ context.Context, code string) error {
	if _, ok := r.drivers[code]; !ok {
		return domain.ErrNotFound
	}
	delete(r.drivers, code)
	return nil
}

func (r *fakeDriverRepo) List(_ context.Context, offset, limit int) ([]*model.Driver, int, error) {
	all := make([]*model.Driver, 0, len(r.drivers))
	for _, driver := range r.drivers {
		all = append(all, driver)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, offset, limit), len(all), nil
}

func (r *fakeDriverRepo) GetByAssignedManagerCode(_ context.Context, managerCode string) ([]*model.Driver, error) {
	var out []*model.Driver
	for _, driver := range r.drivers {
		if driver.AssignedManagerCode != nil && *driver.AssignedManagerCode == managerCode {
			out = append(out, driver)
		}
	}
	return out, nil
}

type fakeManagerRepo struct {
	managers map[string]*model.Manager
}

func newFakeManagerRepo() *fakeManagerRepo {
	return &fakeManagerRepo{managers: make(map[string]*model.Manager)}
}

func (r *fakeManagerRepo) Create(_ context.Context, manager *model.Manager) error {
	if _, ok := r.managers[manager.Code]; ok {
		return fmt.Errorf("duplicate manager %s", manager.Code)
	}
	manager.Role = model.RoleManager
	r.managers[manager.Code] = manager
	return nil
}

func (r *fakeManagerRepo) GetByCode(_ context.Context, code string) (*model.Manager, error) {
	manager, ok := r.managers[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return manager, nil
}

func (r *fakeManagerRepo) GetByExternalID(_ context.Context, externalID string) (*model.Manager, error) {
	for _, manager := range r.managers {
		if manager.ExternalID != nil && *manager.ExternalID == externalID {
			return manager, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeManagerRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := r.managers[code]
	return ok, nil
}

func (r *fakeManagerRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, manager := range r.managers {
		if manager.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeManagerRepo) ExistsBySecteurName(_ context.Context, secteurName string) (bool, error) {
	for _, manager := range r.managers {
		if manager.SecteurName != nil && *manager.SecteurName == secteurName {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeManagerRepo) Update(_ context.Context, manager *model.Manager) error {
	if _, ok := r.managers[manager.Code]; !ok {
		return domain.ErrNotFound
	}
	r.managers[manager.Code] = manager
	return nil
}

func (r *fakeManagerRepo) DeleteByCode(_ context.Context, code string) error {
	if _, ok := r.managers[code]; !ok {
		return domain.ErrNotFound
	}
	delete(r.managers, code)
	return nil
}

func (r *fakeManagerRepo) List(_ context.Context, offset, limit int) ([]*model.Manager, int, error) {
	all := make([]*model.Manager, 0, len(r.managers))
	for _, manager := range r.managers {
		all = append(all, manager)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, offset, limit), len(all), nil
}

type fakeAdminRepo struct {
	admins map[string]*model.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*model.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if _, ok := r.admins[admin.Code]; ok {
		return fmt.Errorf("duplicate admin %s", admin.Code)
	}
	admin.Role = model.RoleAdmin
	r.admins[admin.Code] = admin
	return nil
}

func (r *fakeAdminRepo) GetByCode(_ context.Context, code string) (*model.Admin, error) {
	admin, ok := r.admins[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return admin, nil
}

func (r *fakeAdminRepo) GetByExternalID(_ context.Context, externalID string) (*model.Admin, error) {
	for _, admin := range r.admins {
		if admin.ExternalID != nil && *admin.ExternalID == externalID {
			return admin, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAdminRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := r.admins[code]
	return ok, nil
}

func (r *fakeAdminRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, admin := range r.admins {
		if admin.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAdminRepo) Update(_ context.Context, admin *model.Admin) error {
	if _, ok := r.admins[admin.Code]; !ok {
		return domain.ErrNotFound
	}
	r.admins[admin.Code] = admin
	return nil
}

func (r *fakeAdminRepo) DeleteByCode(_ context.Context, code string) error {
	if _, ok := r.admins[code]; !ok {
		return domain.ErrNotFound
	}
	delete(r.admins, code)
	return nil
}

func (r *fakeAdminRepo) List(_ context.Context, offset, limit int) ([]*model.Admin, int, error) {
	all := make([]*model.Admin, 0, len(r.admins))
	for _, admin := range r.admins {
		all = append(all, admin)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, offset, limit), len(all), nil
}

type fakeClientRepo struct {
	clients map[string]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*model.Client)}
}

func (r *fakeClientRepo) Create(_ context.Context, client *model.Client) error {
	if _, ok := r.clients[client.ClientCode]; ok {
		return fmt.Errorf("duplicate client %s", client.ClientCode)
	}
	r.clients[client.ClientCode] = client
	return nil
}

func (r *fakeClientRepo) GetByCode(_ context.Context, clientCode string) (*model.Client, error) {
	client, ok := r.clients[clientCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func (r *fakeClientRepo) ExistsByCode(_ context.Context, clientCode string) (bool, error) {
	_, ok := r.clients[clientCode]
	return ok, nil
}

func (r *fakeClientRepo) Update(_ context.Context, client *model.Client) error {
	if _, ok := r.clients[client.ClientCode]; !ok {
		return domain.ErrNotFound
	}
	r.clients[client.ClientCode] = client
	return nil
}

func (r *fakeClientRepo) DeleteByCode(_ context.Context, clientCode string) error {
	if _, ok := r.clients[clientCode]; !ok {
		return domain.ErrNotFound
	}
	delete(r.clients, clientCode)
	return nil
}

func (r *fakeClientRepo) List(_ context.Context, offset, limit int) ([]*model.Client, int, error) {
	all := make([]*model.Client, 0, len(r.clients))
	for _, client := range r.clients {
		all = append(all, client)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClientCode < all[j].ClientCode })
	return page(all, offset, limit), len(all), nil
}

func (r *fakeClientRepo) GetBySecteurCode(_ context.Context, secteurCode string) ([]*model.Client, error) {
	var out []*model.Client
	for _, client := range r.clients {
		if client.SecteurCode != nil && *client.SecteurCode == secteurCode {
			out = append(out, client)
		}
	}
	return out, nil
}

type fakeItemRepo struct {
	items map[string]*model.DeliveryItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*model.DeliveryItem)}
}

func (r *fakeItemRepo) Save(_ context.Context, item *model.DeliveryItem) error {
	r.items[item.BLNumber] = item
	return nil
}

func (r *fakeItemRepo) GetByBLNumber(_ context.Context, blNumber string) (*model.DeliveryItem, error) {
	item, ok := r.items[blNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) ExistsByBLNumber(_ context.Context, blNumber string) (bool, error) {
	_, ok := r.items[blNumber]
	return ok, nil
}

func (r *fakeItemRepo) DeleteByBLNumber(_ context.Context, blNumber string) error {
	if _, ok := r.items[blNumber]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, blNumber)
	return nil
}

func (r *fakeItemRepo) List(_ context.Context, offset, limit int) ([]*model.DeliveryItem, int, error) {
	all := make([]*model.DeliveryItem, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BLNumber < all[j].BLNumber })
	return page(all, offset, limit), len(all), nil
}

func (r *fakeItemRepo) GetByBordereauNumber(_ context.Context, bordereauNumber string) ([]*model.DeliveryItem, error) {
	var out []*model.DeliveryItem
	for _, item := range r.items {
		if item.BordereauNumber == bordereauNumber {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BLNumber < out[j].BLNumber })
	return out, nil
}

func (r *fakeItemRepo) GetByCurrentDriverCode(_ context.Context, _ string) ([]*model.DeliveryItem, error) {
	return nil, nil
}

func (r *fakeItemRepo) GetByClientCode(_ context.Context, clientCode string) ([]*model.DeliveryItem, error) {
	var out []*model.DeliveryItem
	for _, item := range r.items {
		if item.ClientCode != nil && *item.ClientCode == clientCode {
			out = append(out, item)
		}
	}
	return out, nil
}

// fakeBordereauRepo links to a fakeItemRepo so GetByNumber can mimic the
// DeliveryItems preload.
type fakeBordereauRepo struct {
	bordereaux map[string]*model.Bordereau
	itemRepo   *fakeItemRepo
}

func newFakeBordereauRepo(itemRepo *fakeItemRepo) *fakeBordereauRepo {
	return &fakeBordereauRepo{
		bordereaux: make(map[string]*model.Bordereau),
		itemRepo:   itemRepo,
	}
}

func (r *fakeBordereauRepo) ExecuteInTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeBordereauRepo) Save(_ context.Context, bordereau *model.Bordereau) error {
	r.bordereaux[bordereau.BordereauNumber] = bordereau
	return nil
}

func (r *fakeBordereauRepo) GetByNumber(ctx context.Context, bordereauNumber string) (*model.Bordereau, error) {
	bordereau, ok := r.bordereaux[bordereauNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.itemRepo != nil {
		items, _ := r.itemRepo.GetByBordereauNumber(ctx, bordereauNumber)
		bordereau.DeliveryItems = bordereau.DeliveryItems[:0]
		for _, item := range items {
			bordereau.DeliveryItems = append(bordereau.DeliveryItems, *item)
		}
	}
	return bordereau, nil
}

func (r *fakeBordereauRepo) ExistsByNumber(_ context.Context, bordereauNumber string) (bool, error) {
	_, ok := r.bordereaux[bordereauNumber]
	return ok, nil
}

func (r *fakeBordereauRepo) DeleteByNumber(_ context.Context, bordereauNumber string) error {
	if _, ok := r.bordereaux[bordereauNumber]; !ok {
		return domain.ErrNotFound
	}
	delete(r.bordereaux, bordereauNumber)
	return nil
}

func (r *fakeBordereauRepo) List(_ context.Context, offset, limit int) ([]*model.Bordereau, int, error) {
	all := make([]*model.Bordereau, 0, len(r.bordereaux))
	for _, bordereau := range r.bordereaux {
		all = append(all, bordereau)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BordereauNumber < all[j].BordereauNumber })
	return page(all, offset, limit), len(all), nil
}

func (r *fakeBordereauRepo) GetByCurrentDriverCode(_ context.Context, driverCode string) ([]*model.Bordereau, error) {
	var out []*model.Bordereau
	for _, bordereau := range r.bordereaux {
		if bordereau.CurrentDriverCode != nil && *bordereau.CurrentDriverCode == driverCode {
			out = append(out, bordereau)
		}
	}
	return out, nil
}

func (r *fakeBordereauRepo) GetBySecteurCode(_ context.Context, secteurCode string) ([]*model.Bordereau, error) {
	var out []*model.Bordereau
	for _, bordereau := range r.bordereaux {
		if bordereau.SecteurCode != nil && *bordereau.SecteurCode == secteurCode {
			out = append(out, bordereau)
		}
	}
	return out, nil
}

type fakeTransferRepo struct {
	transfers map[string]*model.BordereauTransfer
	seq       int
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[string]*model.BordereauTransfer)}
}

func (r *fakeTransferRepo) Create(_ context.Context, transfer *model.BordereauTransfer) error {
	if transfer.ID == "" {
		r.seq++
		transfer.ID = fmt.Sprintf("TRANSFER%04d", r.seq)
	}
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) GetByID(_ context.Context, id string) (*model.BordereauTransfer, error) {
	transfer, ok := r.transfers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

func (r *fakeTransferRepo) GetByBarcode(_ context.Context, barcode string) (*model.BordereauTransfer, error) {
	for _, transfer := range r.transfers {
		if transfer.TransferBarcode == barcode {
			return transfer, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTransferRepo) Update(_ context.Context, transfer *model.BordereauTransfer) error {
	if _, ok := r.transfers[transfer.ID]; !ok {
		return domain.ErrNotFound
	}
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.transfers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.transfers, id)
	return nil
}

func (r *fakeTransferRepo) List(_ context.Context, offset, limit int) ([]*model.BordereauTransfer, int, error) {
	all := make([]*model.BordereauTransfer, 0, len(r.transfers))
	for _, transfer := range r.transfers {
		all = append(all, transfer)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), len(all), nil
}

func (r *fakeTransferRepo) GetByBordereauNumber(_ context.Context, bordereauNumber string) ([]*model.BordereauTransfer, error) {
	var out []*model.BordereauTransfer
	for _, transfer := range r.transfers {
		if transfer.BordereauNumber == bordereauNumber {
			out = append(out, transfer)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) GetByFromDriverCode(_ context.Context, driverCode string) ([]*model.BordereauTransfer, error) {
	var out []*model.BordereauTransfer
	for _, transfer := range r.transfers {
		if transfer.FromDriverCode == driverCode {
			out = append(out, transfer)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) GetByToDriverCode(_ context.Context, driverCode string) ([]*model.BordereauTransfer, error) {
	var out []*model.BordereauTransfer
	for _, transfer := range r.transfers {
		if transfer.ToDriverCode == driverCode {
			out = append(out, transfer)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	entries  []*model.OutboxEntry
	fetchErr error
	marked   []string
	failed   []string
	seq      int
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{}
}

func (r *fakeOutboxRepo) Enqueue(_ context.Context, entry *model.OutboxEntry) error {
	if entry.ID == "" {
		r.seq++
		entry.ID = fmt.Sprintf("OUTBOX%04d", r.seq)
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeOutboxRepo) FetchPending(_ context.Context, limit int) ([]*model.OutboxEntry, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []*model.OutboxEntry
	for _, entry := range r.entries {
		if entry.Status == model.OutboxPending {
			out = append(out, entry)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkPublished(_ context.Context, id string) error {
	for _, entry := range r.entries {
		if entry.ID == id {
			now := time.Now()
			entry.Status = model.OutboxPublished
			entry.PublishedAt = &now
			r.marked = append(r.marked, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, id string, maxAttempts int) error {
	for _, entry := range r.entries {
		if entry.ID == id {
			entry.Attempts++
			if entry.Attempts >= maxAttempts {
				entry.Status = model.OutboxFailed
			}
			r.failed = append(r.failed, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeLocker counts acquisitions and releases. When held is set every
// Acquire fails the way a contended lock does.
type fakeLocker struct {
	held     bool
	acquired []string
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if l.held {
		return nil, redis.ErrLockHeld
	}
	l.acquired = append(l.acquired, key)
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakeKeycloak struct {
	users     map[string]keycloak.UserRepresentation
	roles     map[string][]string
	passwords map[string]string
	enabled   map[string]bool
	createErr error
	assignErr error
	updateErr error
	deleteErr error
	resetErr  error
	seq       int
}

func newFakeKeycloak() *fakeKeycloak {
	return &fakeKeycloak{
		users:     make(map[string]keycloak.UserRepresentation),
		roles:     make(map[string][]string),
		passwords: make(map[string]string),
		enabled:   make(map[string]bool),
	}
}

func (f *fakeKeycloak) CreateUser(_ context.Context, user keycloak.UserRepresentation) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	id := fmt.Sprintf("kc-%04d", f.seq)
	user.ID = id
	f.users[id] = user
	f.enabled[id] = user.Enabled
	return id, nil
}

func (f *fakeKeycloak) GetUser(_ context.Context, externalID string) (*keycloak.UserRepresentation, error) {
	user, ok := f.users[externalID]
	if !ok {
		return nil, fmt.Errorf("keycloak user %s not found", externalID)
	}
	return &user, nil
}

func (f *fakeKeycloak) UpdateUser(_ context.Context, externalID string, user keycloak.UserRepresentation) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[externalID]; !ok {
		return fmt.Errorf("keycloak user %s not found", externalID)
	}
	user.ID = externalID
	f.users[externalID] = user
	return nil
}

func (f *fakeKeycloak) DeleteUser(_ context.Context, externalID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[externalID]; !ok {
		return fmt.Errorf("keycloak user %s not found", externalID)
	}
	delete(f.users, externalID)
	return nil
}

func (f *fakeKeycloak) AssignRealmRole(_ context.Context, externalID, roleName string) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.roles[externalID] = append(f.roles[externalID], roleName)
	return nil
}

func (f *fakeKeycloak) ResetPassword(_ context.Context, externalID, password string, _ bool) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.passwords[externalID] = password
	return nil
}

func (f *fakeKeycloak) SetEnabled(_ context.Context, externalID string, enabled bool) error {
	f.enabled[externalID] = enabled
	return nil
}

func (f *fakeKeycloak) UpdateAttributes(_ context.Context, externalID string, attributes map[string][]string) error {
	user, ok := f.users[externalID]
	if !ok {
		return fmt.Errorf("keycloak user %s not found", externalID)
	}
	user.Attributes = attributes
	f.users[externalID] = user
	return nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
