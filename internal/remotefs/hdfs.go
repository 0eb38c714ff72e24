package remotefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path"
	"path/filepath"

	"github.com/colinmarc/hdfs/v2"
	"github.com/colinmarc/hdfs/v2/hadoopconf"
)

// SchemeHDFS is the scheme served by HDFSDriver.
const SchemeHDFS = "hdfs"

// hdfsDirPerm is applied to directories created on HDFS.
const hdfsDirPerm = 0o755

// envHadoopUser mirrors the variable the Hadoop client reads.
const envHadoopUser = "HADOOP_USER_NAME"

// HDFSOptions configures how HDFS clients are created. Empty fields fall
// back to the Hadoop configuration found via HADOOP_CONF_DIR/HADOOP_HOME.
type HDFSOptions struct {
	Namenodes           []string
	User                string
	UseDatanodeHostname bool
}

// hdfsClient is the subset of *hdfs.Client used by HDFSDriver.
type hdfsClient interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(dirname string, perm os.FileMode) error
	CopyToRemote(src, dst string) error
	Close() error
}

// HDFSDriver writes into an HDFS cluster through the native RPC client.
// The client calls are not cancellable, which is why the copy core runs
// them on an isolated worker.
type HDFSDriver struct {
	client hdfsClient
}

// NewHDFSOpener returns the OpenFunc for the hdfs scheme. A namenode named
// in the location's authority wins over configured namenodes.
func NewHDFSOpener(opts HDFSOptions) OpenFunc {
	return func(_ context.Context, loc Location) (Driver, error) {
		clientOpts, err := hdfsClientOptions(opts, loc)
		if err != nil {
			return nil, err
		}

		client, err := hdfs.NewClient(clientOpts)
		if err != nil {
			return nil, fmt.Errorf("remotefs: connecting to hdfs %v: %w", clientOpts.Addresses, err)
		}

		return &HDFSDriver{client: client}, nil
	}
}

func hdfsClientOptions(opts HDFSOptions, loc Location) (hdfs.ClientOptions, error) {
	var clientOpts hdfs.ClientOptions

	switch {
	case loc.Host != "":
		clientOpts.Addresses = []string{loc.Host}
	case len(opts.Namenodes) > 0:
		clientOpts.Addresses = opts.Namenodes
	default:
		conf, err := hadoopconf.LoadFromEnvironment()
		if err != nil {
			return hdfs.ClientOptions{}, fmt.Errorf("remotefs: loading hadoop configuration: %w", err)
		}

		clientOpts = hdfs.ClientOptionsFromConf(conf)
	}

	if len(clientOpts.Addresses) == 0 {
		return hdfs.ClientOptions{}, errors.New("remotefs: no hdfs namenode configured")
	}

	clientOpts.UseDatanodeHostname = opts.UseDatanodeHostname
	clientOpts.User = opts.User

	if clientOpts.User == "" {
		clientOpts.User = os.Getenv(envHadoopUser)
	}

	if clientOpts.User == "" {
		u, err := user.Current()
		if err != nil {
			return hdfs.ClientOptions{}, fmt.Errorf("remotefs: determining hdfs user: %w", err)
		}

		clientOpts.User = u.Username
	}

	return clientOpts, nil
}

// Exists reports whether anything exists at loc.
func (d *HDFSDriver) Exists(_ context.Context, loc Location) (bool, error) {
	_, err := d.client.Stat(loc.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("remotefs: hdfs stat %s: %w", loc, err)
	}

	return true, nil
}

// IsDir reports whether loc is an existing directory.
func (d *HDFSDriver) IsDir(_ context.Context, loc Location) (bool, error) {
	info, err := d.client.Stat(loc.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("remotefs: hdfs stat %s: %w", loc, err)
	}

	return info.IsDir(), nil
}

// Mkdir creates loc and any missing parents.
func (d *HDFSDriver) Mkdir(_ context.Context, loc Location) error {
	if err := d.client.MkdirAll(loc.Path, hdfsDirPerm); err != nil {
		return fmt.Errorf("remotefs: hdfs mkdir %s: %w", loc, err)
	}

	return nil
}

// CopyFile uploads localPath to dst, creating parent directories first.
func (d *HDFSDriver) CopyFile(ctx context.Context, localPath string, dst Location) error {
	isDir, err := d.IsDir(ctx, dst)
	if err != nil {
		return err
	}

	if isDir {
		dst = dst.Join(filepath.Base(localPath))
	}

	if err := d.client.MkdirAll(path.Dir(dst.Path), hdfsDirPerm); err != nil {
		return fmt.Errorf("remotefs: hdfs mkdir %s: %w", dst.Dir(), err)
	}

	if err := d.client.CopyToRemote(localPath, dst.Path); err != nil {
		return fmt.Errorf("remotefs: hdfs copy %s to %s: %w", localPath, dst, err)
	}

	return nil
}

// Close releases the namenode connection.
func (d *HDFSDriver) Close() error {
	return d.client.Close()
}
