package prometheus

import "strconv"

// rpcIDLabel renders a wire rpcID as a Prometheus label value.
func rpcIDLabel(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// funcIDLabel renders a reflection catalogue func ID as a Prometheus label value.
func funcIDLabel(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
