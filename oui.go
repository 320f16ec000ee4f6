package main

import "fmt"

// ouiDB maps the first three octets of a MAC address to its registrant.
var ouiDB = map[string]string{
	"3C22FB": "Apple",
	"843A4B": "Apple",
	"000D93": "Apple",
	"B827EB": "Raspberry Pi",
	"DCA632": "Raspberry Pi",
	"E45F01": "Raspberry Pi",
	"000C29": "VMware",
	"005056": "VMware",
	"000569": "VMware",
	"080027": "VirtualBox",
	"001C42": "Parallels",
	"00155D": "Microsoft Hyper-V",
	"525400": "QEMU",
	"00E04C": "Realtek",
	"18B430": "Nest Labs",
}

func ouiPrefix(mac []byte) (string, bool) {
	if len(mac) < 3 {
		return "", false
	}
	return fmt.Sprintf("%02X%02X%02X", mac[0], mac[1], mac[2]), true
}

func enrichVendors(hosts []Host) {
	for i := range hosts {
		prefix, ok := ouiPrefix(hosts[i].MAC)
		if !ok {
			continue
		}
		if v, ok := ouiDB[prefix]; ok {
			hosts[i].Vendor = v
		}
	}
}
