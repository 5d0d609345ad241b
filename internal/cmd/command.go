// Package cmd implements the arczip CLI subcommands.
package cmd

import (
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/vqhuy/arczip"
	"github.com/vqhuy/arczip/internal/config"
)

type Arczip struct {
	New     New     `command:"new" description:"create an empty archive"`
	Add     Add     `command:"add" alias:"a" description:"add files or directories to an archive"`
	Extract Extract `command:"extract" alias:"x" description:"extract entries from an archive"`
	List    List    `command:"ls" description:"list archive entries"`
	Cat     Cat     `command:"cat" description:"print the content of an entry"`
	Remove  Remove  `command:"rm" description:"remove entries matching the given prefixes"`
	Mkdir   Mkdir   `command:"mkdir" description:"add an empty directory marker"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Arczip{}

	// errors are printed by main, in color; PrintErrors would duplicate them.
	p := flags.NewNamedParser("arczip", flags.HelpFlag|flags.PassDoubleDash)
	if _, err := p.AddGroup("Commands", "", opts); err != nil {
		return nil, err
	}

	return p, nil
}

// archiveOpts is shared by every subcommand that binds an archive.
type archiveOpts struct {
	File     flags.Filename `short:"f" long:"file" description:"path to the archive" required:"yes"`
	Backend  string         `long:"backend" description:"backend type; default comes from the config file"`
	Password string         `long:"password" description:"password for reading or writing encrypted entries"`
	Folder   string         `long:"folder" description:"virtual folder scoping the operation"`
}

func (o *archiveOpts) open(optFns ...func(*arczip.Options)) (*arczip.Archiver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	typ := o.Backend
	if typ == "" {
		typ = cfg.Backend
	}

	a, err := arczip.New(string(o.File),
		append([]func(*arczip.Options){
			arczip.WithBackend(typ),
			arczip.WithExclude(cfg.Exclude...),
		}, optFns...)...)
	if err != nil {
		return nil, err
	}

	if o.Password != "" && !a.UsePassword(o.Password) {
		log.Printf("backend %q does not support passwords; ignoring", typ)
	}
	if o.Folder != "" {
		a.SetFolder(o.Folder)
	}

	return a, nil
}
