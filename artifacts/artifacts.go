package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// contract names as they appear in the build output
const (
	BTSCore                     = "BTSCore"
	BTSPeriphery                = "BTSPeriphery"
	ProxyAdmin                  = "ProxyAdmin"
	TransparentUpgradeableProxy = "TransparentUpgradeableProxy"
)

var ErrNoBytecode = errors.New("artifact has no bytecode")

// Artifact is a compiled contract (truffle/hardhat build json).
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

type buildFile struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Loader reads artifacts from a build directory, <dir>/<Name>.json
type Loader struct {
	Dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

func (l *Loader) Load(name string) (*Artifact, error) {
	raw, err := os.ReadFile(filepath.Join(l.Dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact %s: %w", name, err)
	}
	return Parse(name, raw)
}

func Parse(name string, raw []byte) (*Artifact, error) {
	var bf buildFile
	if err := json.Unmarshal(raw, &bf); err != nil {
		return nil, fmt.Errorf("cannot unmarshal artifact %s: %w", name, err)
	}
	if len(bf.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", name)
	}
	parsed, err := abi.JSON(bytes.NewReader(bf.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid abi in artifact %s: %w", name, err)
	}

	code := strings.TrimSpace(bf.Bytecode)
	if code == "" || code == "0x" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoBytecode)
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bin, err := hexutil.Decode(code)
	if err != nil {
		// unlinked libraries leave __placeholders__ in the bytecode
		return nil, fmt.Errorf("invalid bytecode in artifact %s: %w", name, err)
	}

	if bf.ContractName != "" {
		name = bf.ContractName
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: bin}, nil
}

// InitializerData packs an initialize(...) call, used as proxy constructor data.
func (a *Artifact) InitializerData(args ...interface{}) ([]byte, error) {
	if _, ok := a.ABI.Methods["initialize"]; !ok {
		return nil, fmt.Errorf("%s has no initialize method", a.Name)
	}
	data, err := a.ABI.Pack("initialize", args...)
	if err != nil {
		return nil, fmt.Errorf("cannot pack %s initializer: %w", a.Name, err)
	}
	return data, nil
}
