package similar

import "strings"

// cityProvinces maps major cities to their province. Municipalities map to
// themselves.
var cityProvinces = map[string]string{
	"北京": "北京",
	"上海": "上海",
	"天津": "天津",
	"重庆": "重庆",
	"广州": "广东",
	"深圳": "广东",
	"东莞": "广东",
	"佛山": "广东",
	"杭州": "浙江",
	"宁波": "浙江",
	"温州": "浙江",
	"南京": "江苏",
	"苏州": "江苏",
	"无锡": "江苏",
	"成都": "四川",
	"绵阳": "四川",
	"武汉": "湖北",
	"宜昌": "湖北",
	"西安": "陕西",
	"咸阳": "陕西",
	"长沙": "湖南",
	"郑州": "河南",
	"济南": "山东",
	"青岛": "山东",
	"合肥": "安徽",
	"福州": "福建",
	"厦门": "福建",
	"昆明": "云南",
	"贵阳": "贵州",
	"南宁": "广西",
	"沈阳": "辽宁",
	"大连": "辽宁",
	"哈尔滨": "黑龙江",
	"长春": "吉林",
	"石家庄": "河北",
	"太原": "山西",
	"兰州": "甘肃",
	"南昌": "江西",
	"海口": "海南",
	"乌鲁木齐": "新疆",
}

// cityPriceFactors are relative construction price levels against the
// national baseline of 1.0.
var cityPriceFactors = map[string]float64{
	"北京": 1.25,
	"上海": 1.30,
	"深圳": 1.20,
	"广州": 1.15,
	"杭州": 1.10,
	"南京": 1.08,
	"苏州": 1.05,
	"天津": 1.02,
	"厦门": 1.05,
	"青岛": 1.00,
	"重庆": 0.95,
	"成都": 0.95,
	"武汉": 0.95,
	"长沙": 0.92,
	"郑州": 0.90,
	"西安": 0.90,
	"昆明": 0.88,
	"兰州": 0.85,
}

const defaultPriceFactor = 1.0

// ExtractCity pulls the first known city name out of a free-form location
// string such as "北京市朝阳区" or "浙江省杭州市西湖区".
func ExtractCity(location string) string {
	for city := range cityProvinces {
		if strings.Contains(location, city) {
			return city
		}
	}
	return ""
}

// ProvinceOf returns the province for a known city, or "" otherwise.
func ProvinceOf(city string) string {
	return cityProvinces[city]
}

// PriceFactor returns the relative price level for a location. Unknown
// locations use the national baseline.
func PriceFactor(location string) float64 {
	city := ExtractCity(location)
	if factor, ok := cityPriceFactors[city]; ok {
		return factor
	}
	return defaultPriceFactor
}
