// Command pagekerneld opens a pagekernel container and keeps it alive as a
// long running worker, performing periodic low-priority housekeeping
// (currently just a liveness log line) on a configurable schedule.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/finlaydb/pagekernel/internal/config"
	"github.com/finlaydb/pagekernel/internal/entry"
	"github.com/finlaydb/pagekernel/internal/store"
)

var flagConfig = flag.String("config", "", "path to a YAML config file (optional, defaults are used otherwise)")

func main() {
	flag.Parse()

	cfg := config.Default()

	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			log.Fatalf("pagekerneld: %s", err)
		}
		cfg = loaded
	}

	container, err := openContainer(cfg.Store)
	if err != nil {
		log.Fatalf("pagekerneld: %s", err)
	}

	if closer, ok := container.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	checksum, err := config.ParseChecksum(cfg.Store.Checksum)
	if err != nil {
		log.Fatalf("pagekerneld: %s", err)
	}

	compression, err := config.ParseCompression(cfg.Store.Compression)
	if err != nil {
		log.Fatalf("pagekerneld: %s", err)
	}

	level, err := config.ParseCompressionLevel(cfg.Store.CompressionLevel)
	if err != nil {
		log.Fatalf("pagekerneld: %s", err)
	}

	freshHeader := store.FilesystemHeader{
		PageSize:              cfg.Store.PageSize,
		NamesChecksum:         checksum,
		NamesCompression:      compression,
		NamesCompressionLevel: level,
	}

	sched, handler := store.NewScheduler()

	worker, err := store.NewWorker(container, handler, freshHeader)
	if err != nil {
		log.Fatalf("pagekerneld: open worker: %s", err)
	}

	go sched.Run()
	go worker.Run()

	page := store.NewPage(0, handler)
	book := store.OpenBook(page, handler)

	reply := make(chan store.FilesystemHeader, 1)
	handler.SendNormal(store.Task{Kind: store.TaskReadFilesystemHeader, ReplyHeader: reply})
	header := <-reply

	tree := entry.Open(book, header.NamesChecksum, header.NamesCompression, header.NamesCompressionLevel)

	log.Printf("pagekerneld: ready, page size %d, root has %d byte(s) of bookkeeping header, names checksum=%s compression=%s/%s",
		header.PageSize, entry.RootOffset, header.NamesChecksum, header.NamesCompression, header.NamesCompressionLevel)

	ensureRootNamed(tree)

	runHousekeeping(cfg, handler, book, tree)

	waitForShutdown()

	log.Printf("pagekerneld: shutting down")
}

// ensureRootNamed gives the root entry a single named child on first boot
// of a fresh container, so the checksum and compression algorithms
// configured in cfg.Store actually run against real data in the running
// daemon rather than only inside tests.
func ensureRootNamed(tree *entry.Tree) {
	root := tree.Read(entry.RootOffset)
	if root.ChildAddr != 0 {
		return
	}

	offset, err := tree.InsertNamedChild(entry.RootOffset, "pagekernel", 0, entry.DefaultReaderBufSize)
	if err != nil {
		log.Printf("pagekerneld: insert root entry: %s", err)
		return
	}

	name, err := tree.ReadName(offset)
	if err != nil {
		log.Printf("pagekerneld: read back root entry name: %s", err)
		return
	}

	log.Printf("pagekerneld: root entry %q checksummed and compressed at offset %d", name, offset)
}

func openContainer(cfg config.StoreConfig) (store.Container, error) {
	if cfg.Path == "" {
		return store.NewMemoryContainer(), nil
	}

	container, err := store.OpenFileContainer(cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.PrefixBufferSize <= 0 {
		return container, nil
	}

	return store.NewPrefixBufferedContainer(container, cfg.PrefixBufferSize)
}

// runHousekeeping starts a cron-scheduled, low-priority pass over the
// store: a Low priority ReadFilesystemHeader task (so it only runs once the
// scheduler's High/Normal lanes drain) followed by a page-count and
// directory-root log line.
func runHousekeeping(cfg config.Config, handler *store.Handler, book *store.Book, tree *entry.Tree) {
	if cfg.Housekeeping.Cron == "" {
		return
	}

	c := cron.New()

	_, err := c.AddFunc(cfg.Housekeeping.Cron, func() {
		reply := make(chan store.FilesystemHeader, 1)
		handler.SendLow(store.Task{Kind: store.TaskReadFilesystemHeader, ReplyHeader: reply})
		header := <-reply

		root := tree.Read(entry.RootOffset)
		log.Printf("pagekerneld: housekeeping pass: page_size=%d pages=%d root_readable=%v",
			header.PageSize, book.Pages(), root.IsReadable())
	})
	if err != nil {
		log.Printf("pagekerneld: invalid housekeeping schedule %q: %s", cfg.Housekeeping.Cron, err)
		return
	}

	c.Start()
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
