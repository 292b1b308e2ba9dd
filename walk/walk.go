// walk.go - concurrent fs-walker
//
// (c) 2022- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package walk does a concurrent file system traversal and returns each
// entry. Callers can filter the returned entries via Options or a
// caller-provided Filter function. This library uses all the available
// CPUs (as returned by runtime.NumCPU()) to maximize concurrency of the
// file-tree traversal; it backs the indexing stage of the comparison
// engine (spec §4.1).
package walk

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/gobwas/glob"
)

// High level design:
//
// * multiple workers; each worker is responsible for processing a single
//   directory and its contents. A worker *always* outputs the directory entry
//   before descending to its children.
// * each directory encountered bumps up a WaitGroup count (walkState::dirWg).
// * Some filtering is done when we output via the `.output()` method and
//   some filtering happens when we process entries from a directory.

// Type is an output filter that can be bitwise OR'd. It denotes the
// kinds of file-system entries that will be returned to the caller.
type Type uint

const (
	FILE    Type = 1 << iota // regular file
	DIR                      // directory
	SYMLINK                  // symbolic link (only reached when FollowSymlinks is false)

	ALL = FILE | DIR | SYMLINK
)

// Entry is one file-system entry returned by the walk: the minimal
// metadata the indexer needs to classify and later fingerprint a file.
// Unlike the teacher's fio.Info, Entry carries no uid/gid/xattr/device
// data - this tool compares file content, not filesystem metadata.
type Entry struct {
	Path string // absolute path
	Mode os.FileMode
	Size int64
}

func (e *Entry) IsDir() bool     { return e.Mode.IsDir() }
func (e *Entry) IsRegular() bool { return e.Mode.IsRegular() }

// Options control the behavior of the filesystem walk.
type Options struct {
	// Number of go-routines to use; if not set (ie 0), Walk() will use
	// the max available cpus.
	Concurrency int

	// Follow symlinks if set.
	FollowSymlinks bool

	// Ignore duplicate inodes: once a (dev, ino) pair has been seen,
	// subsequent entries pointing at the same inode are suppressed.
	IgnoreDuplicateInode bool

	// Types of entries to return.
	Type Type

	// Excludes is a list of shell-glob patterns (gobwas/glob syntax,
	// a superset of path.Match supporting "**") matched against each
	// entry's path relative to the walk root. Excluded directories
	// are not descended; excluded files are dropped.
	Excludes []string

	// Filter is an optional caller-provided callback to exclude
	// entries from further traversal. Returning true means "skip this
	// entry and, if it is a directory, do not descend into it".
	Filter func(e *Entry) (bool, error)
}

type walkState struct {
	Options
	root  string
	ch    chan string
	errch chan error

	dirWg sync.WaitGroup
	wg    sync.WaitGroup

	excludes []glob.Glob

	apply func(e *Entry)

	ino sync.Map
}

// Walk traverses the entries under root concurrently and returns
// results on a channel of *Entry. The caller must drain the channel.
// Errors encountered during the walk are delivered on the error
// channel.
func Walk(root string, opt Options) (chan *Entry, chan error) {
	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.NumCPU()
	}

	out := make(chan *Entry, opt.Concurrency)
	d, err := newWalkState(root, opt)
	if err != nil {
		errch := make(chan error, 1)
		errch <- err
		close(out)
		close(errch)
		return out, errch
	}

	d.apply = func(e *Entry) { out <- e }
	d.doWalk()

	go func() {
		d.dirWg.Wait()
		close(d.ch)
		close(out)
		close(d.errch)
		d.wg.Wait()
	}()

	return out, d.errch
}

// WalkFunc traverses root concurrently and calls apply for every entry
// matching Options. apply must be concurrency-safe: it is called
// concurrently from multiple goroutines. Errors returned by apply, and
// errors encountered during the walk itself, are joined and returned.
func WalkFunc(root string, opt Options, apply func(e *Entry) error) error {
	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.NumCPU()
	}

	d, err := newWalkState(root, opt)
	if err != nil {
		return err
	}

	d.apply = func(e *Entry) {
		if err := apply(e); err != nil {
			d.errch <- err
		}
	}

	d.doWalk()

	var errWg sync.WaitGroup
	var errs []error
	errWg.Add(1)
	go func() {
		defer errWg.Done()
		for e := range d.errch {
			errs = append(errs, e)
		}
	}()

	d.dirWg.Wait()
	close(d.ch)
	close(d.errch)
	errWg.Wait()
	d.wg.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func newWalkState(root string, opt Options) (*walkState, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &Error{"abs", root, err}
	}

	d := &walkState{
		Options: opt,
		root:    abs,
		ch:      make(chan string, opt.Concurrency),
		errch:   make(chan error, opt.Concurrency),
	}

	for _, pat := range opt.Excludes {
		g, err := glob.Compile(pat, '/')
		if err != nil {
			d.errch <- &Error{"exclude-glob", pat, err}
			continue
		}
		d.excludes = append(d.excludes, g)
	}

	if d.Filter == nil {
		d.Filter = func(_ *Entry) (bool, error) { return false, nil }
	}
	if d.Type == 0 {
		d.Type = ALL
	}

	d.wg.Add(d.Concurrency)
	for i := 0; i < d.Concurrency; i++ {
		go d.worker()
	}
	return d, nil
}

// relExclude reports whether path p (absolute) should be excluded,
// matched against its root-relative form.
func (d *walkState) relExclude(p string) bool {
	if len(d.excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(d.root, p)
	if err != nil {
		rel = p
	}
	for _, g := range d.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (d *walkState) doWalk() {
	fi, err := os.Lstat(d.root)
	if err != nil {
		d.error(&Error{"lstat", d.root, err})
		return
	}

	e := &Entry{Path: d.root, Mode: fi.Mode(), Size: fi.Size()}
	if d.relExclude(d.root) {
		return
	}

	skip, err := d.Filter(e)
	if err != nil {
		d.error(&Error{"filter", d.root, err})
		return
	}

	switch {
	case e.IsDir():
		if !skip {
			d.output(e)
			d.enq([]string{d.root})
		}
	case e.Mode&os.ModeSymlink != 0:
		d.handleSymlink(e)
	default:
		if !skip {
			d.output(e)
		}
	}
}

func (d *walkState) worker() {
	defer d.wg.Done()
	for nm := range d.ch {
		d.walkPath(nm)
		d.dirWg.Done()
	}
}

// output applies the type filter and, if it passes, hands the entry to
// the caller's apply callback.
func (d *walkState) output(e *Entry) {
	switch {
	case e.IsDir():
		if d.Type&DIR != 0 {
			d.apply(e)
		}
	case e.Mode&os.ModeSymlink != 0:
		if d.Type&SYMLINK != 0 {
			d.apply(e)
		}
	case e.IsRegular():
		if d.Type&FILE != 0 {
			d.apply(e)
		}
	}
}

// enq enqueues directories for processing by a worker, without
// blocking the caller (which may itself be a worker).
func (d *walkState) enq(dirs []string) {
	if len(dirs) == 0 {
		return
	}
	d.dirWg.Add(len(dirs))
	go func(dirs []string) {
		for _, nm := range dirs {
			d.ch <- nm
		}
	}(dirs)
}

// walkPath reads one directory and queues its regular-file output plus
// any subdirectories it finds.
//
// There is no race between workers reading d.ch and dirWg reaching
// zero: at least one count is always outstanding (the entry currently
// being processed), so the caller (worker()) cannot decrement dirWg
// until walkPath has returned - by which point dirWg has already been
// bumped for every subdir discovered here.
func (d *walkState) walkPath(nm string) {
	fd, err := os.Open(nm)
	if err != nil {
		d.error(&Error{"open", nm, err})
		return
	}
	names, err := fd.Readdirnames(-1)
	fd.Close()
	if err != nil {
		d.error(&Error{"readdirnames", nm, err})
		return
	}

	dirs := make([]string, 0, len(names)/2)
	for _, name := range names {
		fp := filepath.Join(nm, name)

		if d.relExclude(fp) {
			continue
		}

		fi, err := os.Lstat(fp)
		if err != nil {
			d.error(&Error{"lstat", fp, err})
			continue
		}

		e := &Entry{Path: fp, Mode: fi.Mode(), Size: fi.Size()}

		if d.isEntrySeen(fp, fi) {
			continue
		}

		skip, err := d.Filter(e)
		if err != nil {
			d.error(&Error{"filter", fp, err})
			continue
		}

		switch {
		case e.IsDir():
			if !skip {
				d.output(e)
				dirs = append(dirs, fp)
			}
		case e.Mode&os.ModeSymlink != 0:
			if sd := d.symlinkDir(e); sd != "" {
				dirs = append(dirs, sd)
			}
		default:
			if !skip {
				d.output(e)
			}
		}
	}

	d.enq(dirs)
}

// handleSymlink processes a root-level symlink argument.
func (d *walkState) handleSymlink(e *Entry) {
	if dir := d.symlinkDir(e); dir != "" {
		d.enq([]string{dir})
	}
}

// symlinkDir resolves a symlink entry when FollowSymlinks is set and,
// if it points at a directory, returns the resolved path to descend
// into - otherwise it outputs the resolved (or, if not following, the
// unresolved) entry directly and returns "".
func (d *walkState) symlinkDir(e *Entry) string {
	if !d.FollowSymlinks {
		d.output(e)
		return ""
	}

	target, err := filepath.EvalSymlinks(e.Path)
	if err != nil {
		d.error(&Error{"symlink", e.Path, err})
		return ""
	}
	fi, err := os.Stat(target)
	if err != nil {
		d.error(&Error{"symlink-stat", target, err})
		return ""
	}

	re := &Entry{Path: target, Mode: fi.Mode(), Size: fi.Size()}
	if re.IsDir() {
		return target
	}
	d.output(re)
	return ""
}

// isEntrySeen tracks (dev, ino) pairs to suppress duplicate hardlinks
// when IgnoreDuplicateInode is set.
func (d *walkState) isEntrySeen(path string, fi os.FileInfo) bool {
	if !d.IgnoreDuplicateInode {
		return false
	}
	key := inodeKey(fi)
	if key == "" {
		return false
	}
	_, loaded := d.ino.LoadOrStore(key, path)
	return loaded
}

func (d *walkState) error(e error) {
	d.errch <- e
}
