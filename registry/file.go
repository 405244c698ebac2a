package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"btsbridge/types"
)

// LegacySection is the section the devnet address file keeps its contracts in.
const LegacySection = "solidity"

// address file layout: network -> logical name -> address
type addressFile map[string]map[string]string

func readAddressFile(path string) (addressFile, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return addressFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	af := addressFile{}
	if err := json.Unmarshal(raw, &af); err != nil {
		return nil, fmt.Errorf("cannot unmarshal address file %s: %w", path, err)
	}
	return af, nil
}

func writeAddressFile(path string, af addressFile) error {
	raw, err := json.MarshalIndent(af, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".addresses-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile resolves the registry of a network from its own section of the
// persisted address table.
func LoadFile(path, network string) (*Registry, error) {
	return LoadFileSection(path, network, network)
}

// LoadFileSection resolves the registry of a network from a named section,
// e.g. LegacySection of a devnet address file.
func LoadFileSection(path, section, network string) (*Registry, error) {
	af, err := readAddressFile(path)
	if err != nil {
		return nil, err
	}
	entries, ok := af[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", types.ErrRecordNotFound, section, path)
	}

	r := &Registry{Network: network}
	for name, value := range entries {
		if err := r.set(name, value); err != nil {
			return nil, fmt.Errorf("address file %s: %w", path, err)
		}
	}
	return r, nil
}

// FileStore keeps completed deployments in the address file read by the operations client.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) SaveDeployment(rec *types.DeploymentRecord) error {
	if rec == nil {
		return errors.New("null object to store")
	}
	af, err := readAddressFile(s.Path)
	if err != nil {
		return err
	}

	section := af[rec.Network]
	if section == nil {
		section = map[string]string{}
	}
	if section[Core] != "" {
		return fmt.Errorf("%w: %s", types.ErrRecordExists, rec.Network)
	}

	r, err := FromRecord(rec, section[Token])
	if err != nil {
		return err
	}
	for name, addr := range r.Entries() {
		section[name] = addr
	}
	af[rec.Network] = section

	return writeAddressFile(s.Path, af)
}

func (s *FileStore) GetDeployment(network string) (*types.DeploymentRecord, error) {
	af, err := readAddressFile(s.Path)
	if err != nil {
		return nil, err
	}
	section, ok := af[network]
	if !ok || section[Core] == "" {
		return nil, nil
	}
	return &types.DeploymentRecord{
		Network:          network,
		CoreAddress:      section[Core],
		PeripheryAddress: section[Periphery],
		UpgradeAdmin:     section[UpgradeAdmin],
		Linked:           true,
	}, nil
}
