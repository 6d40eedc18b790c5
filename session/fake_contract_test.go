package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/HamzaTakiX/Blockchain-project/model"
)

// fakeLedger mimics the registry chaincode as seen through the gateway:
// results are serialised the way contractapi does it and errors arrive as
// plain strings.
type fakeLedger struct {
	mu      sync.Mutex
	caller  string
	admin   string
	records map[string]*model.DiplomaRecord
	total   int
	calls   []string
	failTx  map[string]error
}

func newFakeLedger(admin, caller string) *fakeLedger {
	return &fakeLedger{admin: admin, caller: caller, records: map[string]*model.DiplomaRecord{}, failTx: map[string]error{}}
}

func (f *fakeLedger) remote(kind model.ErrorKind, format string, args ...interface{}) error {
	return fmt.Errorf("chaincode response 500, %s: %s", kind, fmt.Sprintf(format, args...))
}

func (f *fakeLedger) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err := f.failTx[name]; err != nil {
		return nil, err
	}
	switch name {
	case "WhoAmI":
		return []byte(f.caller), nil
	case "GetAdmin":
		return []byte(f.admin), nil
	case "IsAdmin":
		return []byte(strconv.FormatBool(args[0] == f.admin)), nil
	case "VerifyDiploma":
		_, ok := f.records[args[0]]
		return []byte(strconv.FormatBool(ok)), nil
	case "GetDiploma":
		r, ok := f.records[args[0]]
		if !ok {
			return nil, f.remote(model.KindNotFound, "no diploma registered for '%s'", args[0])
		}
		return json.Marshal(r)
	case "GetTotalIssued":
		return []byte(strconv.Itoa(f.total)), nil
	case "GetAllStudentAddresses":
		out := make([]string, 0, len(f.records))
		for k := range f.records {
			out = append(out, k)
		}
		sort.Strings(out)
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("unknown transaction %s", name)
}

func (f *fakeLedger) SubmitTransaction(name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err := f.failTx[name]; err != nil {
		return nil, err
	}
	if f.caller != f.admin {
		return nil, f.remote(model.KindUnauthorized, "caller '%s' is not the registry admin", f.caller)
	}
	switch name {
	case "IssueDiploma":
		if _, ok := f.records[args[0]]; ok {
			return nil, f.remote(model.KindDuplicateRecord, "address '%s' already holds a diploma", args[0])
		}
		f.records[args[0]] = &model.DiplomaRecord{
			ObjectType: "Diploma", StudentAddress: args[0], StudentName: args[1],
			Specialization: args[2], ArtifactID: args[3], IssueDate: 1749292200000, IsValid: true,
		}
		f.total++
		return nil, nil
	case "RevokeDiploma":
		r, ok := f.records[args[0]]
		if !ok {
			return nil, f.remote(model.KindNotFound, "no diploma registered for '%s'", args[0])
		}
		if !r.IsValid {
			return nil, f.remote(model.KindAlreadyRevoked, "diploma of '%s' is already revoked", args[0])
		}
		r.IsValid = false
		return nil, nil
	}
	return nil, fmt.Errorf("unknown transaction %s", name)
}

func (f *fakeLedger) submitted(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}
