package classfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ClasspathOptions describes how OpenClasspath assembles the chain.
type ClasspathOptions struct {
	Entries []string // directories and .jar files, in lookup order
	Stubs   []string // extra stub files in the boot.toml format
	Boot    bool     // append the embedded platform stubs
	Cache   *DiskCache
}

// Classpath is an opened ChainIndex plus the resources it holds.
type Classpath struct {
	ChainIndex
	closers []io.Closer
}

// OpenClasspath opens every entry. Directories and jars come first, then the
// extra stubs, then the boot stubs, so a real JDK jar on the classpath
// shadows the stubs.
func OpenClasspath(opts ClasspathOptions) (*Classpath, error) {
	cp := &Classpath{}
	for _, entry := range opts.Entries {
		idx, closer, err := openEntry(entry)
		if err != nil {
			_ = cp.Close()
			return nil, err
		}
		if closer != nil {
			cp.closers = append(cp.closers, closer)
		}
		if opts.Cache != nil && strings.HasSuffix(entry, ".jar") {
			salt, err := StampDigest(entry)
			if err == nil {
				idx = NewCachedIndex(idx, opts.Cache, salt)
			}
		}
		cp.ChainIndex = append(cp.ChainIndex, idx)
	}
	for _, stub := range opts.Stubs {
		data, err := os.ReadFile(stub)
		if err != nil {
			_ = cp.Close()
			return nil, fmt.Errorf("stub file %s: %w", stub, err)
		}
		idx, err := DecodeStubs(string(data))
		if err != nil {
			_ = cp.Close()
			return nil, fmt.Errorf("stub file %s: %w", stub, err)
		}
		cp.ChainIndex = append(cp.ChainIndex, idx)
	}
	if opts.Boot {
		boot, err := Boot()
		if err != nil {
			_ = cp.Close()
			return nil, err
		}
		cp.ChainIndex = append(cp.ChainIndex, boot)
	}
	return cp, nil
}

func openEntry(entry string) (Index, io.Closer, error) {
	info, err := os.Stat(entry)
	if err != nil {
		return nil, nil, fmt.Errorf("classpath entry %s: %w", entry, err)
	}
	if info.IsDir() {
		d, err := NewDirIndex(entry)
		return d, nil, err
	}
	if strings.HasSuffix(entry, ".jar") || strings.HasSuffix(entry, ".zip") {
		j, err := OpenJar(entry)
		if err != nil {
			return nil, nil, err
		}
		return j, j, nil
	}
	return nil, nil, fmt.Errorf("classpath entry %s: expected a directory or .jar", entry)
}

func (cp *Classpath) Close() error {
	var errs []error
	for _, c := range cp.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	cp.closers = nil
	return errors.Join(errs...)
}
