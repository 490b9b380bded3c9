package service

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"epos-bridge/internal/config"
	"epos-bridge/internal/model"
	"epos-bridge/internal/repository"
	"epos-bridge/pkg/driver"
)

type fakePrinterRepo struct {
	mu       sync.Mutex
	printers map[string]*model.Printer
	touched  []string
}

func newFakePrinterRepo(printers ...*model.Printer) *fakePrinterRepo {
	r := &fakePrinterRepo{printers: make(map[string]*model.Printer)}
	for _, p := range printers {
		r.printers[p.PrinterID] = p
	}
	return r
}

func (r *fakePrinterRepo) Create(ctx context.Context, p *model.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[p.PrinterID]; ok {
		return repository.ErrPrinterExists
	}
	r.printers[p.PrinterID] = p
	return nil
}

func (r *fakePrinterRepo) GetByPrinterID(ctx context.Context, id string) (*model.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.printers[id]
	if !ok {
		return nil, repository.ErrPrinterNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePrinterRepo) Update(ctx context.Context, p *model.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[p.PrinterID]; !ok {
		return repository.ErrPrinterNotFound
	}
	r.printers[p.PrinterID] = p
	return nil
}

func (r *fakePrinterRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[id]; !ok {
		return repository.ErrPrinterNotFound
	}
	delete(r.printers, id)
	return nil
}

func (r *fakePrinterRepo) List(ctx context.Context, filter *repository.PrinterFilter) ([]*model.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Printer
	for _, p := range r.printers {
		if filter != nil && filter.Enabled != nil && p.Enabled != *filter.Enabled {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrinterID < out[j].PrinterID })
	return out, nil
}

func (r *fakePrinterRepo) TouchLastPrint(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, id)
	return nil
}

type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*model.PrintJob
	completed []model.PrintJob
	lastLimit int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*model.PrintJob)}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *model.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Complete(ctx context.Context, job *model.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return repository.ErrJobNotFound
	}
	cp := *job
	r.jobs[job.ID] = &cp
	r.completed = append(r.completed, cp)
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return job, nil
}

func (r *fakeJobRepo) ListByPrinter(ctx context.Context, printerID string, limit int) ([]*model.PrintJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []*model.PrintJob
	for _, job := range r.jobs {
		if job.PrinterID == printerID {
			out = append(out, job)
		}
	}
	return out, nil
}

// recordingDriver logs every call as a short string
type recordingDriver struct {
	calls      []string
	buffered   int
	connected  bool
	connectErr error
	sendErr    error
	pingErr    error
	sent       int
}

func (d *recordingDriver) record(call string, n int) error {
	d.calls = append(d.calls, call)
	d.buffered += n
	return nil
}

func (d *recordingDriver) AddText(text string) error {
	return d.record("text:"+text, len(text))
}

func (d *recordingDriver) AddCommand(data []byte) error {
	return d.record(fmt.Sprintf("command:%x", data), len(data))
}

func (d *recordingDriver) AddImage(img image.Image, x, y, w, h int, c driver.Color, m driver.ColorMode, ht driver.Halftone, b float64, comp driver.Compress) error {
	return d.record(fmt.Sprintf("image:%dx%d", w, h), w*h/8)
}

func (d *recordingDriver) AddFeedLine(lines int) error {
	return d.record(fmt.Sprintf("feed:%d", lines), 3)
}

func (d *recordingDriver) AddCut(mode driver.CutMode) error {
	return d.record(fmt.Sprintf("cut:%d", mode), 3)
}

func (d *recordingDriver) AddTextAlign(a driver.Align) error {
	return d.record(fmt.Sprintf("align:%d", a), 3)
}

func (d *recordingDriver) AddTextFont(f driver.Font) error {
	return d.record(fmt.Sprintf("font:%d", f), 3)
}

func (d *recordingDriver) AddTextSmooth(s driver.Toggle) error {
	return d.record(fmt.Sprintf("smooth:%d", s), 3)
}

func (d *recordingDriver) AddTextSize(w, h int) error {
	return d.record(fmt.Sprintf("size:%dx%d", w, h), 3)
}

func (d *recordingDriver) AddTextStyle(r, u, e driver.Toggle, c driver.Color) error {
	return d.record("style", 3)
}

func (d *recordingDriver) Connect(ctx context.Context) error {
	if d.connectErr != nil {
		return d.connectErr
	}
	d.connected = true
	return nil
}

func (d *recordingDriver) Disconnect(ctx context.Context) error {
	d.connected = false
	return nil
}

func (d *recordingDriver) IsConnected() bool { return d.connected }

func (d *recordingDriver) Ping(ctx context.Context) error { return d.pingErr }

func (d *recordingDriver) BeginTransaction() error {
	d.buffered = 2
	return nil
}

func (d *recordingDriver) EndTransaction() error { return nil }

func (d *recordingDriver) SendData(ctx context.Context) error {
	if d.sendErr != nil {
		return d.sendErr
	}
	d.sent += d.buffered
	d.buffered = 0
	return nil
}

func (d *recordingDriver) ClearCommandBuffer() error {
	d.buffered = 0
	return nil
}

func (d *recordingDriver) GetPrinterInfo() *driver.PrinterInfo {
	return &driver.PrinterInfo{PrinterID: "test"}
}

func (d *recordingDriver) GetStatus() *driver.PrinterStatus {
	return &driver.PrinterStatus{Connected: d.connected, BufferedSize: d.buffered, LastSent: time.Time{}}
}

type fakeDrivers struct {
	drv       *recordingDriver
	createErr error
	supported bool
}

func (f *fakeDrivers) CreateDriver(p *model.Printer) (driver.PrinterDriver, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.drv, nil
}

func (f *fakeDrivers) IsSupported(brand model.PrinterBrand, printerModel string) bool {
	return f.supported
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.PrinterEvent
}

func (p *fakePublisher) Publish(e model.PrinterEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Printer: config.PrinterConfig{
			OperationTimeout: time.Second,
			MaxJobCommands:   10,
			PaperWidth:       model.PaperWidth80mm,
		},
	}
}

func testPrinter(id string) *model.Printer {
	return &model.Printer{
		ID:             uuid.New(),
		PrinterID:      id,
		Name:           "Front counter",
		Brand:          model.BrandEpson,
		Model:          "TM-T88VI",
		ConnectionType: model.ConnectionTypeTCP,
		ConnectionConfig: model.JSONObject{
			"host": "192.168.1.50",
		},
		PaperWidth: model.PaperWidth80mm,
		Enabled:    true,
	}
}
