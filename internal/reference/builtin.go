package reference

import "guidechat/internal/model"

// The 34 first-level administrative units in effect since mid-2025.
var builtinProvinces = []model.ReferenceEntry{
	{Name: "Thành phố Hà Nội"},
	{Name: "Thành phố Huế"},
	{Name: "Thành phố Hải Phòng"},
	{Name: "Thành phố Đà Nẵng"},
	{Name: "Thành phố Hồ Chí Minh"},
	{Name: "Thành phố Cần Thơ"},
	{Name: "Tỉnh Lai Châu"},
	{Name: "Tỉnh Điện Biên"},
	{Name: "Tỉnh Sơn La"},
	{Name: "Tỉnh Lạng Sơn"},
	{Name: "Tỉnh Quảng Ninh"},
	{Name: "Tỉnh Thanh Hóa"},
	{Name: "Tỉnh Nghệ An"},
	{Name: "Tỉnh Hà Tĩnh"},
	{Name: "Tỉnh Cao Bằng"},
	{Name: "Tỉnh Tuyên Quang"},
	{Name: "Tỉnh Lào Cai"},
	{Name: "Tỉnh Thái Nguyên"},
	{Name: "Tỉnh Phú Thọ"},
	{Name: "Tỉnh Bắc Ninh"},
	{Name: "Tỉnh Hưng Yên"},
	{Name: "Tỉnh Ninh Bình"},
	{Name: "Tỉnh Quảng Trị"},
	{Name: "Tỉnh Quảng Ngãi"},
	{Name: "Tỉnh Gia Lai"},
	{Name: "Tỉnh Khánh Hòa"},
	{Name: "Tỉnh Lâm Đồng"},
	{Name: "Tỉnh Đắk Lắk"},
	{Name: "Tỉnh Đồng Nai"},
	{Name: "Tỉnh Tây Ninh"},
	{Name: "Tỉnh Vĩnh Long"},
	{Name: "Tỉnh Đồng Tháp"},
	{Name: "Tỉnh Cà Mau"},
	{Name: "Tỉnh An Giang"},
}

// Amenities known to the property backend, used when it cannot be reached.
var builtinAmenities = []model.ReferenceEntry{
	{Name: "WiFi", ID: "68c6bab2ab13f9d982ee9995"},
	{Name: "Điều hòa", ID: "68be84191b3b9b4fa53e7d57"},
	{Name: "Ban công", ID: "68b95b0e4bad16608dbefad8"},
	{Name: "Tủ lạnh", ID: "68be84191b3b9b4fa53e7d58"},
	{Name: "Thang máy", ID: "68be84191b3b9b4fa53e7d59"},
	{Name: "Bảo vệ 24/7", ID: "68be84191b3b9b4fa53e7d60"},
}

// BuiltinProvinces returns a copy of the built-in province list.
func BuiltinProvinces() []model.ReferenceEntry {
	return append([]model.ReferenceEntry(nil), builtinProvinces...)
}

// BuiltinAmenities returns a copy of the built-in amenity list.
func BuiltinAmenities() []model.ReferenceEntry {
	return append([]model.ReferenceEntry(nil), builtinAmenities...)
}
