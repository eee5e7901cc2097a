// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package places

import "slices"

// Address 由 address_components 解析出的結構化地址。
type Address struct {
	StreetNumber string
	Route        string
	City         string
	ZipCode      string
}

// Street 門牌與路名，兩者皆空時回傳空字串。
func (a Address) Street() string {
	switch {
	case a.StreetNumber == "":
		return a.Route
	case a.Route == "":
		return a.StreetNumber
	}
	return a.StreetNumber + " " + a.Route
}

// ParseAddress 依 types 標籤取出門牌、路名、城市與郵遞區號（皆取 short_name）。
// 每個 component 只歸入第一個符合的欄位。
func ParseAddress(comps []AddressComponent) Address {
	var a Address
	for _, c := range comps {
		switch {
		case slices.Contains(c.Types, "street_number"):
			a.StreetNumber = c.ShortName
		case slices.Contains(c.Types, "route"):
			a.Route = c.ShortName
		case slices.Contains(c.Types, "locality"):
			a.City = c.ShortName
		case slices.Contains(c.Types, "postal_code"):
			a.ZipCode = c.ShortName
		}
	}
	return a
}
